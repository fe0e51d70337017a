package quiz

import (
	"context"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Repository defines the data access contract for door questions.
type Repository interface {
	// DoorExists reports whether the door exists and belongs to the campaign.
	DoorExists(ctx context.Context, campaignID, doorID string) (bool, error)

	// List returns the door's questions ordered by position.
	List(ctx context.Context, doorID string) ([]domain.Question, error)

	// Replace deletes the door's questions and inserts qs in one transaction.
	Replace(ctx context.Context, doorID string, qs []domain.Question) error
}

// Generator produces quiz questions about a topic.
type Generator interface {
	Generate(ctx context.Context, topic string, n int) ([]domain.Question, error)
}
