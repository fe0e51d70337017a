package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/advent-ledger/internal/domain"
)

// CampaignRepo reads campaigns and doors. Those tables are owned by the
// campaign editor; the engine never writes them.
type CampaignRepo struct{ db *sqlx.DB }

// NewCampaignRepo creates a Postgres-backed campaign reader.
func NewCampaignRepo(db *sqlx.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// Get returns the campaign, or notFound when it doesn't exist.
func (r *CampaignRepo) Get(ctx context.Context, id string, notFound error) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT id, workspace_id, title, slug, status, format,
		       starts_at, ends_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

// Exists reports whether the campaign exists.
func (r *CampaignRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("campaign exists: %w", err)
	}
	return exists, nil
}

// GetDoor returns the door if it belongs to the campaign, or notFound.
func (r *CampaignRepo) GetDoor(ctx context.Context, campaignID, doorID string, notFound error) (*domain.Door, error) {
	var d domain.Door
	err := r.db.GetContext(ctx, &d, `
		SELECT id, campaign_id, door_number, open_date, product_name
		FROM doors
		WHERE id = $1 AND campaign_id = $2
	`, doorID, campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get door: %w", err)
	}
	return &d, nil
}

// DoorExists reports whether the door exists and belongs to the campaign.
func (r *CampaignRepo) DoorExists(ctx context.Context, campaignID, doorID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM doors WHERE id = $1 AND campaign_id = $2)`,
		doorID, campaignID,
	)
	if err != nil {
		return false, fmt.Errorf("door exists: %w", err)
	}
	return exists, nil
}
