package draw

import (
	"context"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Repository defines the data access contract for leads, entries and
// winners. Implementations must be safe for concurrent use and must enforce
// the winner uniqueness constraints themselves.
type Repository interface {
	// GetCampaign returns ErrNotFound if the campaign doesn't exist.
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// GetDoor returns ErrNotFound unless the door exists and belongs to the
	// campaign.
	GetDoor(ctx context.Context, campaignID, doorID string) (*domain.Door, error)

	// UpsertLead inserts the lead or, when (campaign, lower(email)) already
	// exists, updates its name and phone. It returns the stored row and
	// whether it was newly created.
	UpsertLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, bool, error)

	// CreateEntry inserts an entry. It reports false, without error, when the
	// lead already entered this door.
	CreateEntry(ctx context.Context, e *domain.Entry) (bool, error)

	// ListEntries returns the door's entries ordered by entered_at, id.
	ListEntries(ctx context.Context, doorID string) ([]domain.Entry, error)

	// GetDoorWinner returns ErrNotFound when no winner exists.
	GetDoorWinner(ctx context.Context, doorID string) (*domain.Winner, error)

	// CreateDoorWinner persists a winner. It returns ErrWinnerAlreadySelected
	// when the door already has one.
	CreateDoorWinner(ctx context.Context, w *domain.Winner) error

	// ListLeadIDs returns the campaign's lead ids ordered by created_at, id.
	ListLeadIDs(ctx context.Context, campaignID string) ([]string, error)

	// LeadInCampaign reports whether the lead belongs to the campaign.
	LeadInCampaign(ctx context.Context, campaignID, leadID string) (bool, error)

	// GetLandingWinner returns ErrNotFound when no winner exists.
	GetLandingWinner(ctx context.Context, campaignID string) (*domain.LandingWinner, error)

	// CreateLandingWinner persists a winner. It returns
	// ErrWinnerAlreadySelected when the campaign already has one.
	CreateLandingWinner(ctx context.Context, w *domain.LandingWinner) error

	// SetLandingVisibility returns ErrNotFound when no winner exists.
	SetLandingVisibility(ctx context.Context, campaignID string, isPublic bool) (*domain.LandingWinner, error)

	// DeleteLandingWinner returns ErrNotFound when no winner exists.
	DeleteLandingWinner(ctx context.Context, campaignID string) error
}

// EntryRecorder bumps the daily entry rollup.
type EntryRecorder interface {
	RecordEntry(ctx context.Context, campaignID string) error
}
