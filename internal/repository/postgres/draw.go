package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/draw"
)

const (
	doorWinnerConstraint    = "door_winners_door_id_key"
	landingWinnerConstraint = "landing_winners_campaign_id_key"
)

// DrawRepo implements draw.Repository against PostgreSQL. Winner uniqueness
// is enforced by the door_winners and landing_winners unique constraints.
type DrawRepo struct {
	db        *sqlx.DB
	campaigns *CampaignRepo
}

// NewDrawRepo creates a Postgres-backed draw repository.
func NewDrawRepo(db *sqlx.DB) *DrawRepo {
	return &DrawRepo{db: db, campaigns: NewCampaignRepo(db)}
}

func (r *DrawRepo) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return r.campaigns.Get(ctx, campaignID, draw.ErrNotFound)
}

func (r *DrawRepo) GetDoor(ctx context.Context, campaignID, doorID string) (*domain.Door, error) {
	return r.campaigns.GetDoor(ctx, campaignID, doorID, draw.ErrNotFound)
}

// UpsertLead relies on the (campaign_id, lower(email)) unique index; xmax is
// zero only for a freshly inserted row.
func (r *DrawRepo) UpsertLead(ctx context.Context, l *domain.Lead) (*domain.Lead, bool, error) {
	var row struct {
		domain.Lead
		Inserted bool `db:"inserted"`
	}
	err := r.db.GetContext(ctx, &row, `
		INSERT INTO leads (id, campaign_id, email, name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (campaign_id, lower(email)) DO UPDATE SET
			name  = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone)
		RETURNING id, campaign_id, email, name, phone, created_at, (xmax = 0) AS inserted
	`, l.ID, l.CampaignID, l.Email, l.Name, l.Phone, l.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("upsert lead: %w", err)
	}
	return &row.Lead, row.Inserted, nil
}

// CreateEntry fills e with the stored row when the lead had already entered.
func (r *DrawRepo) CreateEntry(ctx context.Context, e *domain.Entry) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, lead_id, door_id, entered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lead_id, door_id) DO NOTHING
	`, e.ID, e.LeadID, e.DoorID, e.EnteredAt)
	if err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	err = r.db.GetContext(ctx, e, `
		SELECT id, lead_id, door_id, entered_at
		FROM entries
		WHERE lead_id = $1 AND door_id = $2
	`, e.LeadID, e.DoorID)
	if err != nil {
		return false, fmt.Errorf("get existing entry: %w", err)
	}
	return false, nil
}

func (r *DrawRepo) ListEntries(ctx context.Context, doorID string) ([]domain.Entry, error) {
	var out []domain.Entry
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, lead_id, door_id, entered_at
		FROM entries
		WHERE door_id = $1
		ORDER BY entered_at, id
	`, doorID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (r *DrawRepo) GetDoorWinner(ctx context.Context, doorID string) (*domain.Winner, error) {
	var w domain.Winner
	err := r.db.GetContext(ctx, &w, `
		SELECT id, door_id, lead_id, entry_id, notified, selected_at
		FROM door_winners
		WHERE door_id = $1
	`, doorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draw.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get door winner: %w", err)
	}
	return &w, nil
}

func (r *DrawRepo) CreateDoorWinner(ctx context.Context, w *domain.Winner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO door_winners (id, door_id, lead_id, entry_id, notified, selected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, w.ID, w.DoorID, w.LeadID, w.EntryID, w.Notified, w.SelectedAt)
	if isUniqueViolation(err, doorWinnerConstraint) {
		return draw.ErrWinnerAlreadySelected
	}
	if err != nil {
		return fmt.Errorf("insert door winner: %w", err)
	}
	return nil
}

func (r *DrawRepo) ListLeadIDs(ctx context.Context, campaignID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM leads WHERE campaign_id = $1 ORDER BY created_at, id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list lead ids: %w", err)
	}
	return ids, nil
}

func (r *DrawRepo) LeadInCampaign(ctx context.Context, campaignID, leadID string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1 AND campaign_id = $2)`,
		leadID, campaignID,
	)
	if err != nil {
		return false, fmt.Errorf("lead in campaign: %w", err)
	}
	return ok, nil
}

func (r *DrawRepo) GetLandingWinner(ctx context.Context, campaignID string) (*domain.LandingWinner, error) {
	var w domain.LandingWinner
	err := r.db.GetContext(ctx, &w, `
		SELECT id, campaign_id, lead_id, is_public, selected_at
		FROM landing_winners
		WHERE campaign_id = $1
	`, campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draw.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get landing winner: %w", err)
	}
	return &w, nil
}

func (r *DrawRepo) CreateLandingWinner(ctx context.Context, w *domain.LandingWinner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO landing_winners (id, campaign_id, lead_id, is_public, selected_at)
		VALUES ($1, $2, $3, $4, $5)
	`, w.ID, w.CampaignID, w.LeadID, w.IsPublic, w.SelectedAt)
	if isUniqueViolation(err, landingWinnerConstraint) {
		return draw.ErrWinnerAlreadySelected
	}
	if err != nil {
		return fmt.Errorf("insert landing winner: %w", err)
	}
	return nil
}

func (r *DrawRepo) SetLandingVisibility(ctx context.Context, campaignID string, isPublic bool) (*domain.LandingWinner, error) {
	var w domain.LandingWinner
	err := r.db.GetContext(ctx, &w, `
		UPDATE landing_winners SET is_public = $2
		WHERE campaign_id = $1
		RETURNING id, campaign_id, lead_id, is_public, selected_at
	`, campaignID, isPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draw.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set landing visibility: %w", err)
	}
	return &w, nil
}

func (r *DrawRepo) DeleteLandingWinner(ctx context.Context, campaignID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM landing_winners WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return fmt.Errorf("delete landing winner: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return draw.ErrNotFound
	}
	return nil
}
