package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/distlock"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/pkg/metrics"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

// DefaultReconcileInterval is how often closed days are rebuilt.
const DefaultReconcileInterval = time.Hour

// CampaignLister finds campaigns that received page views since a time.
type CampaignLister interface {
	ActiveCampaigns(ctx context.Context, since time.Time) ([]string, error)
}

// Rebuilder recomputes one summary row from raw events.
type Rebuilder interface {
	Rebuild(ctx context.Context, campaignID string, day time.Time) (*domain.AnalyticsSummary, error)
}

// CacheInvalidator drops cached reports for a campaign.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, campaignID string) error
}

// RollupReconciler repairs increments lost when a live rollup write failed
// after its raw view was stored. It only rebuilds yesterday: today's row is
// still receiving increments and overwriting it would race them.
type RollupReconciler struct {
	campaigns CampaignLister
	rebuilder Rebuilder
	cache     CacheInvalidator
	lock      distlock.Lock
	clock     rollup.Clock
	interval  time.Duration
}

// NewRollupReconciler wires a reconciler. cache may be nil.
func NewRollupReconciler(campaigns CampaignLister, rebuilder Rebuilder, cache CacheInvalidator, lock distlock.Lock, clock rollup.Clock, interval time.Duration) *RollupReconciler {
	if clock == nil {
		clock = rollup.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &RollupReconciler{
		campaigns: campaigns,
		rebuilder: rebuilder,
		cache:     cache,
		lock:      lock,
		clock:     clock,
		interval:  interval,
	}
}

// Start runs a cycle immediately and then on every tick until ctx is done.
func (r *RollupReconciler) Start(ctx context.Context) {
	logger.Info("[reconciler] starting", "interval", r.interval.String())
	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("[reconciler] stopping")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *RollupReconciler) tick(ctx context.Context) {
	err := distlock.Do(ctx, r.lock, func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		return err
	})
	switch {
	case errors.Is(err, distlock.ErrNotAcquired):
		metrics.WorkerRuns.WithLabelValues("reconciler", "skipped").Inc()
		logger.Debug("[reconciler] another instance holds the lock")
	case err != nil:
		metrics.WorkerRuns.WithLabelValues("reconciler", "failed").Inc()
		logger.Error("[reconciler] cycle failed", "error", err.Error())
	default:
		metrics.WorkerRuns.WithLabelValues("reconciler", "ok").Inc()
	}
}

// RunOnce rebuilds yesterday's row for every campaign with views since the
// start of yesterday and returns how many rows were rebuilt. A failing
// campaign is logged and skipped; the cycle fails only if listing fails or
// every rebuild failed.
func (r *RollupReconciler) RunOnce(ctx context.Context) (int, error) {
	today := rollup.DayKey(r.clock.Now())
	yesterday := today.AddDate(0, 0, -1)

	ids, err := r.campaigns.ActiveCampaigns(ctx, yesterday)
	if err != nil {
		return 0, err
	}

	var rebuilt int
	var lastErr error
	for _, id := range ids {
		if ctx.Err() != nil {
			return rebuilt, ctx.Err()
		}
		s, err := r.rebuilder.Rebuild(ctx, id, yesterday)
		if err != nil {
			lastErr = err
			logger.Warn("[reconciler] rebuild failed", "campaign_id", id, "error", err.Error())
			continue
		}
		rebuilt++
		logger.Debug("[reconciler] rebuilt", "campaign_id", id, "date", yesterday.Format("2006-01-02"),
			"views", s.TotalViews, "entries", s.TotalEntries)

		if r.cache != nil {
			if err := r.cache.Invalidate(ctx, id); err != nil {
				logger.Warn("[reconciler] cache invalidate failed", "campaign_id", id, "error", err.Error())
			}
		}
	}

	if rebuilt == 0 && lastErr != nil {
		return 0, lastErr
	}
	if len(ids) > 0 {
		logger.Info("[reconciler] cycle complete", "campaigns", len(ids), "rebuilt", rebuilt)
	}
	return rebuilt, nil
}
