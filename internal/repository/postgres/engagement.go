package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/advent-ledger/internal/domain"
)

// EngagementRepo implements ingest.Store against PostgreSQL.
type EngagementRepo struct{ db *sqlx.DB }

// NewEngagementRepo creates a Postgres-backed raw event store.
func NewEngagementRepo(db *sqlx.DB) *EngagementRepo { return &EngagementRepo{db: db} }

func (r *EngagementRepo) InsertCalendarView(ctx context.Context, v *domain.CalendarView) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calendar_views
			(id, campaign_id, session_id, visitor_hash, device_type, browser, os, referrer, source, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, v.ID, v.CampaignID, v.SessionID, v.VisitorHash, v.DeviceType, v.Browser, v.OS,
		v.Referrer, v.Source, v.Duration, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert calendar view: %w", err)
	}
	return nil
}

func (r *EngagementRepo) InsertDoorView(ctx context.Context, v *domain.DoorView) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO door_views (id, campaign_id, door_id, session_id, visitor_hash, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.CampaignID, v.DoorID, v.SessionID, v.VisitorHash, v.Action, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert door view: %w", err)
	}
	return nil
}

// BackfillDuration updates only a row whose duration is still null, so a
// repeated or late session end never overwrites a recorded duration.
func (r *EngagementRepo) BackfillDuration(ctx context.Context, campaignID, sessionID string, seconds int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_views
		SET duration = $3
		WHERE id = (
			SELECT id FROM calendar_views
			WHERE campaign_id = $1 AND session_id = $2 AND duration IS NULL
			ORDER BY created_at DESC
			LIMIT 1
		)
		AND duration IS NULL
	`, campaignID, sessionID, seconds)
	if err != nil {
		return false, fmt.Errorf("backfill duration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("backfill duration rows: %w", err)
	}
	return n > 0, nil
}
