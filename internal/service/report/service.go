package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/pkg/metrics"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

// maxConcurrentQueries bounds the report fan-out to the eight sub-queries.
const maxConcurrentQueries = 8

// TopDoorCount is the length of Report.TopDoors.
const TopDoorCount = 5

var (
	deviceKeys  = []domain.DeviceType{domain.DeviceMobile, domain.DeviceTablet, domain.DeviceDesktop}
	trafficKeys = []domain.TrafficSource{
		domain.SourceDirect, domain.SourceSocial, domain.SourceEmail, domain.SourceSearch, domain.SourceOther,
	}
)

// Service builds campaign reports.
type Service struct {
	store Store
	cache *Cache
	clock rollup.Clock
}

// NewService creates a report service. cache may be nil; a nil clock uses
// the system clock.
func NewService(store Store, cache *Cache, clock rollup.Clock) *Service {
	if clock == nil {
		clock = rollup.SystemClock{}
	}
	return &Service{store: store, cache: cache, clock: clock}
}

// Build returns the report of a campaign over the period ending now.
// Cached reports are served when available; cache failures fall through
// to the store.
func (s *Service) Build(ctx context.Context, campaignID string, p Period) (*domain.Report, error) {
	if cached, err := s.cache.Get(ctx, campaignID, p); err != nil {
		metrics.ReportCache.WithLabelValues("error").Inc()
		logger.Warn("[report] cache read failed", "campaign_id", campaignID, "err", err)
	} else if cached != nil {
		metrics.ReportCache.WithLabelValues("hit").Inc()
		return cached, nil
	} else if s.cache != nil {
		metrics.ReportCache.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	r, err := s.assemble(ctx, campaignID, p)
	metrics.ReportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, p, r); err != nil {
		logger.Warn("[report] cache write failed", "campaign_id", campaignID, "err", err)
	}
	return r, nil
}

func (s *Service) assemble(ctx context.Context, campaignID string, p Period) (*domain.Report, error) {
	from, to := p.Range(s.clock.Now())
	q := Query{CampaignID: campaignID, From: from, To: to}

	var (
		totals   ViewTotals
		entries  int
		devices  map[string]int
		traffic  map[string]int
		doors    []domain.DoorPerformance
		timeline []domain.TimelinePoint
		avg      float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)

	g.Go(func() error {
		if _, err := s.store.GetCampaign(gctx, campaignID); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() (err error) {
		totals, err = s.store.ViewTotals(gctx, q)
		return wrap("view totals", err)
	})
	g.Go(func() (err error) {
		entries, err = s.store.TotalEntries(gctx, q)
		return wrap("total entries", err)
	})
	g.Go(func() (err error) {
		devices, err = s.store.DeviceBreakdown(gctx, q)
		return wrap("device breakdown", err)
	})
	g.Go(func() (err error) {
		traffic, err = s.store.TrafficBreakdown(gctx, q)
		return wrap("traffic breakdown", err)
	})
	g.Go(func() (err error) {
		doors, err = s.store.DoorStats(gctx, q)
		return wrap("door stats", err)
	})
	g.Go(func() (err error) {
		timeline, err = s.store.Timeline(gctx, q)
		return wrap("timeline", err)
	})
	g.Go(func() (err error) {
		avg, err = s.store.AvgSessionDuration(gctx, q)
		return wrap("average session duration", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range doors {
		doors[i].ClickRate = percent(doors[i].Clicks, doors[i].Views, 1)
		doors[i].ConversionRate = percent(doors[i].Entries, doors[i].Clicks, 1)
	}
	if timeline == nil {
		timeline = []domain.TimelinePoint{}
	}
	if doors == nil {
		doors = []domain.DoorPerformance{}
	}

	return &domain.Report{
		CampaignID:           campaignID,
		Period:               string(p),
		TotalViews:           totals.Views,
		UniqueVisitors:       totals.UniqueVisitors,
		TotalEntries:         entries,
		ConversionRate:       percent(entries, totals.Views, 2),
		ReturningVisitorRate: percent(totals.Views-totals.UniqueVisitors, totals.Views, 1),
		AvgSessionDuration:   roundSeconds(avg),
		DeviceBreakdown:      fill(devices, deviceKeys),
		TrafficSources:       fill(traffic, trafficKeys),
		DoorPerformance:      doors,
		TopDoors:             topDoors(doors, TopDoorCount),
		Timeline:             timeline,
	}, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

// fill returns a map holding every bucket key, zero when absent.
func fill[K ~string](in map[string]int, keys []K) map[string]int {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[string(k)] = in[string(k)]
	}
	return out
}

// topDoors returns up to n doors by entries descending, ties by door number.
func topDoors(doors []domain.DoorPerformance, n int) []domain.DoorPerformance {
	ranked := make([]domain.DoorPerformance, len(doors))
	copy(ranked, doors)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Entries != ranked[j].Entries {
			return ranked[i].Entries > ranked[j].Entries
		}
		return ranked[i].DoorNumber < ranked[j].DoorNumber
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
