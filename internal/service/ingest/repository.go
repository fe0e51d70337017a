package ingest

import (
	"context"

	"github.com/ignite/advent-ledger/internal/domain"
)

// Store persists raw engagement events. Implementations must be safe for
// concurrent use; no in-process state is shared between requests.
type Store interface {
	// InsertCalendarView stores one page view.
	InsertCalendarView(ctx context.Context, v *domain.CalendarView) error

	// InsertDoorView stores one door interaction.
	InsertDoorView(ctx context.Context, v *domain.DoorView) error

	// BackfillDuration sets the duration of the most recent view of
	// (campaignID, sessionID) whose duration is still null. It reports
	// whether a row was updated; no matching row is not an error.
	BackfillDuration(ctx context.Context, campaignID, sessionID string, seconds int) (bool, error)
}

// ViewRecorder receives the rollup side effect of a stored page view.
// *rollup.Aggregator satisfies it.
type ViewRecorder interface {
	RecordView(ctx context.Context, campaignID, visitorHash string, device domain.DeviceType, source domain.TrafficSource) error
}
