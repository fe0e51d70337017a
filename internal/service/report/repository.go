package report

import (
	"context"
	"time"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Query scopes every store read of one report.
type Query struct {
	CampaignID string
	// From is zero for all-time reports.
	From time.Time
	To   time.Time
}

// FromDay and ToDay bound rollup rows, which are keyed by UTC day.
func (q Query) FromDay() time.Time { return dayKey(q.From) }
func (q Query) ToDay() time.Time   { return dayKey(q.To) }

func dayKey(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ViewTotals are counted from raw calendar views.
type ViewTotals struct {
	Views          int `db:"views"`
	UniqueVisitors int `db:"unique_visitors"`
}

// Store defines the read contract behind a report. Each method is an
// independent query; implementations must be safe for concurrent use.
type Store interface {
	// GetCampaign returns ErrNotFound if the campaign doesn't exist.
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// ViewTotals counts raw views and distinct visitor hashes in range.
	ViewTotals(ctx context.Context, q Query) (ViewTotals, error)

	// TotalEntries counts door entries, or leads for landing campaigns.
	TotalEntries(ctx context.Context, q Query) (int, error)

	// DeviceBreakdown sums the device buckets of the daily rollups.
	DeviceBreakdown(ctx context.Context, q Query) (map[string]int, error)

	// TrafficBreakdown sums the traffic-source buckets of the daily rollups.
	TrafficBreakdown(ctx context.Context, q Query) (map[string]int, error)

	// DoorStats returns raw views, clicks and entries for every door, ordered
	// by door number. Rates are left empty.
	DoorStats(ctx context.Context, q Query) ([]domain.DoorPerformance, error)

	// Timeline returns one point per rollup day, oldest first.
	Timeline(ctx context.Context, q Query) ([]domain.TimelinePoint, error)

	// AvgSessionDuration is the mean of non-null durations, 0 when none.
	AvgSessionDuration(ctx context.Context, q Query) (float64, error)
}
