package leads

import (
	"context"
	"time"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Row is one lead with its entry and win aggregates.
type Row struct {
	Email string
	Name  string
	Phone string
	// RegisteredAt is when the lead signed up.
	RegisteredAt time.Time
	FirstEntry   *time.Time
	TotalEntries int
	// DoorNumbers lists entered doors in ascending order.
	DoorNumbers []int
	Wins        int
	// Prizes lists the product names of won doors.
	Prizes []string
}

// Repository defines the read contract of the export.
type Repository interface {
	// GetCampaign returns ErrNotFound if the campaign doesn't exist.
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// ListRows returns every lead of the campaign ordered by created_at, id.
	ListRows(ctx context.Context, campaignID string) ([]Row, error)
}
