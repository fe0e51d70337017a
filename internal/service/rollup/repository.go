package rollup

import (
	"context"
	"time"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Increment is an additive delta for one summary row. Zero fields leave the
// corresponding counter untouched.
//
// When VisitorHash is set, the store also records the (campaign, day, hash)
// triple and adds one to unique_visitors only if that triple is new, within
// the same atomic statement.
type Increment struct {
	CampaignID    string
	Date          time.Time
	VisitorHash   string
	TotalViews    int
	MobileViews   int
	TabletViews   int
	DesktopViews  int
	DirectTraffic int
	SocialTraffic int
	EmailTraffic  int
	SearchTraffic int
	OtherTraffic  int
	TotalEntries  int
}

// Store persists summary rows. Implementations must be safe for concurrent
// use and ApplyIncrement must be atomic: insert the row initialised to the
// delta, or add the delta to the existing row, in one round trip.
type Store interface {
	ApplyIncrement(ctx context.Context, inc Increment) error

	// ComputeDay derives a full summary for one day from raw views and entries.
	ComputeDay(ctx context.Context, campaignID string, day time.Time) (*domain.AnalyticsSummary, error)

	// ReplaceSummary overwrites (or creates) a summary row with absolute values.
	ReplaceSummary(ctx context.Context, s domain.AnalyticsSummary) error
}
