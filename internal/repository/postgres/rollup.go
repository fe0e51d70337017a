package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

// RollupRepo implements rollup.Store against PostgreSQL.
type RollupRepo struct{ db *sqlx.DB }

// NewRollupRepo creates a Postgres-backed rollup store.
func NewRollupRepo(db *sqlx.DB) *RollupRepo { return &RollupRepo{db: db} }

// applyIncrementSQL adds a delta to a summary row in one statement. The
// visitor CTE inserts the day's visitor hash; unique_visitors grows by one
// only when that insert created a row. A NULL hash ($3) skips the CTE
// insert entirely.
const applyIncrementSQL = `
	WITH new_visitor AS (
		INSERT INTO daily_visitors (campaign_id, date, visitor_hash)
		SELECT $1, $2, $3 WHERE $3::text IS NOT NULL
		ON CONFLICT DO NOTHING
		RETURNING 1
	)
	INSERT INTO analytics_summaries AS s (
		campaign_id, date, total_views, unique_visitors,
		mobile_views, tablet_views, desktop_views,
		direct_traffic, social_traffic, email_traffic, search_traffic, other_traffic,
		total_entries, updated_at
	)
	VALUES (
		$1, $2, $4, (SELECT COUNT(*) FROM new_visitor),
		$5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, NOW()
	)
	ON CONFLICT (campaign_id, date) DO UPDATE SET
		total_views     = s.total_views + EXCLUDED.total_views,
		unique_visitors = s.unique_visitors + EXCLUDED.unique_visitors,
		mobile_views    = s.mobile_views + EXCLUDED.mobile_views,
		tablet_views    = s.tablet_views + EXCLUDED.tablet_views,
		desktop_views   = s.desktop_views + EXCLUDED.desktop_views,
		direct_traffic  = s.direct_traffic + EXCLUDED.direct_traffic,
		social_traffic  = s.social_traffic + EXCLUDED.social_traffic,
		email_traffic   = s.email_traffic + EXCLUDED.email_traffic,
		search_traffic  = s.search_traffic + EXCLUDED.search_traffic,
		other_traffic   = s.other_traffic + EXCLUDED.other_traffic,
		total_entries   = s.total_entries + EXCLUDED.total_entries,
		updated_at      = NOW()
`

func (r *RollupRepo) ApplyIncrement(ctx context.Context, inc rollup.Increment) error {
	var hash interface{}
	if inc.VisitorHash != "" {
		hash = inc.VisitorHash
	}
	_, err := r.db.ExecContext(ctx, applyIncrementSQL,
		inc.CampaignID, inc.Date, hash, inc.TotalViews,
		inc.MobileViews, inc.TabletViews, inc.DesktopViews,
		inc.DirectTraffic, inc.SocialTraffic, inc.EmailTraffic, inc.SearchTraffic, inc.OtherTraffic,
		inc.TotalEntries,
	)
	if err != nil {
		return fmt.Errorf("apply increment: %w", err)
	}
	return nil
}

// dayWindow returns the summary key of day and its UTC bounds. The key is
// bound as text and the bounds as timestamps so no parameter is typed as a
// date and reinterpreted in the session TimeZone.
func dayWindow(day time.Time) (key string, start, end time.Time) {
	start = rollup.DayKey(day)
	return start.Format(time.DateOnly), start, start.Add(24 * time.Hour)
}

// ComputeDay derives a summary from raw rows of [day, day+24h) UTC.
func (r *RollupRepo) ComputeDay(ctx context.Context, campaignID string, day time.Time) (*domain.AnalyticsSummary, error) {
	key, start, end := dayWindow(day)
	s := domain.AnalyticsSummary{CampaignID: campaignID, Date: start}
	err := r.db.GetContext(ctx, &s, `
		SELECT
			$1::text AS campaign_id,
			$2::date AS date,
			COUNT(*) AS total_views,
			COUNT(DISTINCT visitor_hash) AS unique_visitors,
			COUNT(*) FILTER (WHERE device_type = 'mobile') AS mobile_views,
			COUNT(*) FILTER (WHERE device_type = 'tablet') AS tablet_views,
			COUNT(*) FILTER (WHERE device_type NOT IN ('mobile', 'tablet')) AS desktop_views,
			COUNT(*) FILTER (WHERE source = 'direct') AS direct_traffic,
			COUNT(*) FILTER (WHERE source = 'social') AS social_traffic,
			COUNT(*) FILTER (WHERE source = 'email') AS email_traffic,
			COUNT(*) FILTER (WHERE source = 'search') AS search_traffic,
			COUNT(*) FILTER (WHERE source = 'other') AS other_traffic,
			COALESCE((
				SELECT CASE WHEN c.format = 'landing' THEN (
					SELECT COUNT(*) FROM leads l
					WHERE l.campaign_id = $1 AND l.created_at >= $3::timestamptz AND l.created_at < $4::timestamptz
				) ELSE (
					SELECT COUNT(*) FROM entries e JOIN doors d ON d.id = e.door_id
					WHERE d.campaign_id = $1 AND e.entered_at >= $3::timestamptz AND e.entered_at < $4::timestamptz
				) END
				FROM campaigns c WHERE c.id = $1
			), 0) AS total_entries
		FROM calendar_views
		WHERE campaign_id = $1 AND created_at >= $3::timestamptz AND created_at < $4::timestamptz
	`, campaignID, key, start, end)
	if err != nil {
		return nil, fmt.Errorf("compute day: %w", err)
	}
	s.Date = start
	return &s, nil
}

// ReplaceSummary overwrites a summary row and resynchronises the day's
// visitor set so later increments keep counting from the rebuilt value.
func (r *RollupRepo) ReplaceSummary(ctx context.Context, s domain.AnalyticsSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	key, start, end := dayWindow(s.Date)
	s.Date = start
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_visitors (campaign_id, date, visitor_hash)
		SELECT DISTINCT campaign_id, $2::date, visitor_hash
		FROM calendar_views
		WHERE campaign_id = $1 AND created_at >= $3::timestamptz AND created_at < $4::timestamptz
		ON CONFLICT DO NOTHING
	`, s.CampaignID, key, start, end); err != nil {
		return fmt.Errorf("sync daily visitors: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO analytics_summaries (
			campaign_id, date, total_views, unique_visitors,
			mobile_views, tablet_views, desktop_views,
			direct_traffic, social_traffic, email_traffic, search_traffic, other_traffic,
			total_entries, updated_at
		) VALUES (
			:campaign_id, :date, :total_views, :unique_visitors,
			:mobile_views, :tablet_views, :desktop_views,
			:direct_traffic, :social_traffic, :email_traffic, :search_traffic, :other_traffic,
			:total_entries, NOW()
		)
		ON CONFLICT (campaign_id, date) DO UPDATE SET
			total_views     = EXCLUDED.total_views,
			unique_visitors = EXCLUDED.unique_visitors,
			mobile_views    = EXCLUDED.mobile_views,
			tablet_views    = EXCLUDED.tablet_views,
			desktop_views   = EXCLUDED.desktop_views,
			direct_traffic  = EXCLUDED.direct_traffic,
			social_traffic  = EXCLUDED.social_traffic,
			email_traffic   = EXCLUDED.email_traffic,
			search_traffic  = EXCLUDED.search_traffic,
			other_traffic   = EXCLUDED.other_traffic,
			total_entries   = EXCLUDED.total_entries,
			updated_at      = NOW()
	`, s); err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}
	return tx.Commit()
}

// ActiveCampaigns returns ids of campaigns with page views since the given
// time.
func (r *RollupRepo) ActiveCampaigns(ctx context.Context, since time.Time) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT campaign_id
		FROM calendar_views
		WHERE created_at >= $1
		ORDER BY campaign_id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("active campaigns: %w", err)
	}
	return ids, nil
}
