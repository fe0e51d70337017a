package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/report"
)

// ReportRepo implements report.Store against PostgreSQL. Every method is a
// single read so the service can run them concurrently.
type ReportRepo struct {
	db        *sqlx.DB
	campaigns *CampaignRepo
}

// NewReportRepo creates a Postgres-backed report store.
func NewReportRepo(db *sqlx.DB) *ReportRepo {
	return &ReportRepo{db: db, campaigns: NewCampaignRepo(db)}
}

func (r *ReportRepo) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return r.campaigns.Get(ctx, campaignID, report.ErrNotFound)
}

func (r *ReportRepo) ViewTotals(ctx context.Context, q report.Query) (report.ViewTotals, error) {
	var t report.ViewTotals
	err := r.db.GetContext(ctx, &t, `
		SELECT COUNT(*) AS views, COUNT(DISTINCT visitor_hash) AS unique_visitors
		FROM calendar_views
		WHERE campaign_id = $1 AND created_at >= $2 AND created_at <= $3
	`, q.CampaignID, q.From, q.To)
	if err != nil {
		return t, fmt.Errorf("view totals: %w", err)
	}
	return t, nil
}

func (r *ReportRepo) TotalEntries(ctx context.Context, q report.Query) (int, error) {
	var n sql.NullInt64
	err := r.db.GetContext(ctx, &n, `
		SELECT CASE WHEN c.format = 'landing' THEN (
			SELECT COUNT(*) FROM leads l
			WHERE l.campaign_id = c.id AND l.created_at >= $2 AND l.created_at <= $3
		) ELSE (
			SELECT COUNT(*) FROM entries e JOIN doors d ON d.id = e.door_id
			WHERE d.campaign_id = c.id AND e.entered_at >= $2 AND e.entered_at <= $3
		) END
		FROM campaigns c
		WHERE c.id = $1
	`, q.CampaignID, q.From, q.To)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("total entries: %w", err)
	}
	return int(n.Int64), nil
}

func (r *ReportRepo) DeviceBreakdown(ctx context.Context, q report.Query) (map[string]int, error) {
	var s domain.AnalyticsSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COALESCE(SUM(mobile_views), 0) AS mobile_views,
		       COALESCE(SUM(tablet_views), 0) AS tablet_views,
		       COALESCE(SUM(desktop_views), 0) AS desktop_views
		FROM analytics_summaries
		WHERE campaign_id = $1 AND date >= $2 AND date <= $3
	`, q.CampaignID, q.FromDay(), q.ToDay())
	if err != nil {
		return nil, fmt.Errorf("device breakdown: %w", err)
	}
	return map[string]int{
		string(domain.DeviceMobile):  s.MobileViews,
		string(domain.DeviceTablet):  s.TabletViews,
		string(domain.DeviceDesktop): s.DesktopViews,
	}, nil
}

func (r *ReportRepo) TrafficBreakdown(ctx context.Context, q report.Query) (map[string]int, error) {
	var s domain.AnalyticsSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COALESCE(SUM(direct_traffic), 0) AS direct_traffic,
		       COALESCE(SUM(social_traffic), 0) AS social_traffic,
		       COALESCE(SUM(email_traffic), 0) AS email_traffic,
		       COALESCE(SUM(search_traffic), 0) AS search_traffic,
		       COALESCE(SUM(other_traffic), 0) AS other_traffic
		FROM analytics_summaries
		WHERE campaign_id = $1 AND date >= $2 AND date <= $3
	`, q.CampaignID, q.FromDay(), q.ToDay())
	if err != nil {
		return nil, fmt.Errorf("traffic breakdown: %w", err)
	}
	return map[string]int{
		string(domain.SourceDirect): s.DirectTraffic,
		string(domain.SourceSocial): s.SocialTraffic,
		string(domain.SourceEmail):  s.EmailTraffic,
		string(domain.SourceSearch): s.SearchTraffic,
		string(domain.SourceOther):  s.OtherTraffic,
	}, nil
}

// DoorStats counts every page view as one view of each door, since the
// calendar page shows all doors at once.
func (r *ReportRepo) DoorStats(ctx context.Context, q report.Query) ([]domain.DoorPerformance, error) {
	var out []domain.DoorPerformance
	err := r.db.SelectContext(ctx, &out, `
		WITH page_views AS (
			SELECT COUNT(*) AS n FROM calendar_views
			WHERE campaign_id = $1 AND created_at >= $2 AND created_at <= $3
		),
		clicks AS (
			SELECT door_id, COUNT(*) AS n FROM door_views
			WHERE campaign_id = $1 AND action = 'click' AND created_at >= $2 AND created_at <= $3
			GROUP BY door_id
		),
		door_entries AS (
			SELECT e.door_id, COUNT(*) AS n FROM entries e JOIN doors d ON d.id = e.door_id
			WHERE d.campaign_id = $1 AND e.entered_at >= $2 AND e.entered_at <= $3
			GROUP BY e.door_id
		)
		SELECT d.id AS door_id,
		       d.door_number,
		       (SELECT n FROM page_views) AS views,
		       COALESCE(c.n, 0) AS clicks,
		       COALESCE(de.n, 0) AS entries
		FROM doors d
		LEFT JOIN clicks c ON c.door_id = d.id
		LEFT JOIN door_entries de ON de.door_id = d.id
		WHERE d.campaign_id = $1
		ORDER BY d.door_number
	`, q.CampaignID, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("door stats: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) Timeline(ctx context.Context, q report.Query) ([]domain.TimelinePoint, error) {
	var out []domain.TimelinePoint
	err := r.db.SelectContext(ctx, &out, `
		SELECT to_char(date, 'YYYY-MM-DD') AS date,
		       total_views AS views,
		       unique_visitors AS visitors,
		       total_entries AS entries
		FROM analytics_summaries
		WHERE campaign_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`, q.CampaignID, q.FromDay(), q.ToDay())
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) AvgSessionDuration(ctx context.Context, q report.Query) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.GetContext(ctx, &avg, `
		SELECT AVG(duration)::float8
		FROM calendar_views
		WHERE campaign_id = $1 AND duration IS NOT NULL AND created_at >= $2 AND created_at <= $3
	`, q.CampaignID, q.From, q.To)
	if err != nil {
		return 0, fmt.Errorf("average session duration: %w", err)
	}
	return avg.Float64, nil
}
