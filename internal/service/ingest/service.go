package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sony/gobreaker/v2"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/fingerprint"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/pkg/metrics"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

// Config bounds how long ingestion may hold a client connection.
type Config struct {
	// StoreTimeout caps every individual store round trip.
	StoreTimeout time.Duration
	// BreakerFailures is the number of consecutive store failures that opens
	// the circuit.
	BreakerFailures uint32
	// BreakerCooldown is how long the circuit stays open before probing.
	BreakerCooldown time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		StoreTimeout:    3 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 10 * time.Second,
	}
}

// Client describes the requester of a tracking call.
type Client struct {
	Address   string
	UserAgent string
}

// Service records tracking events. All public methods are safe for
// concurrent use if the underlying store is concurrency-safe.
type Service struct {
	store   Store
	rollups ViewRecorder
	clock   rollup.Clock
	cfg     Config
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewService creates an ingestion service. A nil clock uses the system clock;
// zero config fields take their defaults.
func NewService(store Store, rollups ViewRecorder, clock rollup.Clock, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}
	if clock == nil {
		clock = rollup.SystemClock{}
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "ingest-store",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A rejected payload says nothing about store health; only
		// infrastructure failures may open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidEvent)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[ingest] circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{store: store, rollups: rollups, clock: clock, cfg: cfg, breaker: breaker}
}

// Record persists one event. Validation happens in Decode; errors returned
// here are storage failures (wrapping ErrUnavailable when the circuit is
// open) or ErrInvalidEvent when the store rejects a reference or value. A session end with no matching view is a silent no-op.
func (s *Service) Record(ctx context.Context, ev Event, client Client) error {
	// The browser may go away mid-request (page unload); the write still
	// completes under its own bounded timeout.
	ctx = context.WithoutCancel(ctx)

	var err error
	outcome := "ok"
	switch e := ev.(type) {
	case PageView:
		err = s.recordPageView(ctx, e, client)
	case DoorClick:
		err = s.recordDoorView(ctx, e.CampaignID, e.DoorID, e.SessionID, domain.DoorActionClick, client)
	case DoorEnter:
		err = s.recordDoorView(ctx, e.CampaignID, e.DoorID, e.SessionID, domain.DoorActionEntered, client)
	case SessionEnd:
		var updated bool
		updated, err = s.recordSessionEnd(ctx, e)
		if err == nil && !updated {
			outcome = "noop"
		}
	default:
		return ErrUnknownEventType
	}

	if errors.Is(err, ErrInvalidEvent) {
		outcome = "rejected"
		logger.Warn("[ingest] event rejected", "type", string(ev.Type()), "campaign_id", ev.Campaign(), "err", err)
	} else if err != nil {
		outcome = "failed"
		logger.Error("[ingest] record failed", "type", string(ev.Type()), "campaign_id", ev.Campaign(), "err", err)
	}
	metrics.IngestEvents.WithLabelValues(string(ev.Type()), outcome).Inc()
	return err
}

func (s *Service) recordPageView(ctx context.Context, e PageView, client Client) error {
	ua := e.UserAgent
	if ua == "" {
		ua = client.UserAgent
	}
	visitor := fingerprint.Fingerprint(client.Address, ua, e.Referrer)

	view := &domain.CalendarView{
		ID:          uuid.New().String(),
		CampaignID:  e.CampaignID,
		SessionID:   e.SessionID,
		VisitorHash: visitor.Hash,
		DeviceType:  visitor.Device,
		Browser:     visitor.Browser,
		OS:          visitor.OS,
		Referrer:    e.Referrer,
		Source:      visitor.Source,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.guard(ctx, func(ctx context.Context) error {
		return s.store.InsertCalendarView(ctx, view)
	}); err != nil {
		return fmt.Errorf("insert calendar view: %w", err)
	}

	// The view is persisted; a failed rollup is logged and reconciled later
	// rather than surfaced to the visitor.
	if err := s.guard(ctx, func(ctx context.Context) error {
		return s.rollups.RecordView(ctx, e.CampaignID, visitor.Hash, visitor.Device, visitor.Source)
	}); err != nil {
		metrics.RollupFailures.Inc()
		logger.Warn("[ingest] rollup increment failed", "campaign_id", e.CampaignID, "err", err)
	}
	return nil
}

func (s *Service) recordDoorView(ctx context.Context, campaignID, doorID, sessionID string, action domain.DoorAction, client Client) error {
	view := &domain.DoorView{
		ID:          uuid.New().String(),
		CampaignID:  campaignID,
		DoorID:      doorID,
		SessionID:   sessionID,
		VisitorHash: fingerprint.VisitorHash(client.Address, client.UserAgent),
		Action:      action,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.guard(ctx, func(ctx context.Context) error {
		return s.store.InsertDoorView(ctx, view)
	}); err != nil {
		return fmt.Errorf("insert door view: %w", err)
	}
	return nil
}

func (s *Service) recordSessionEnd(ctx context.Context, e SessionEnd) (bool, error) {
	var updated bool
	err := s.guard(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.store.BackfillDuration(ctx, e.CampaignID, e.SessionID, e.Duration)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("backfill duration: %w", err)
	}
	if !updated {
		logger.Debug("[ingest] session end without open view", "campaign_id", e.CampaignID, "session_id", e.SessionID)
	}
	return updated, nil
}

// guard runs op under the store timeout and the circuit breaker.
func (s *Service) guard(ctx context.Context, op func(context.Context) error) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()
		return struct{}{}, classify(op(cctx))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// classify maps store errors caused by the payload onto ErrInvalidEvent.
// Integrity violations (class 23) are bad references such as an unknown
// calendarId; data exceptions (class 22) are malformed values.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Class() {
	case "23":
		logger.Debug("[ingest] store rejected reference", "code", string(pqErr.Code), "constraint", pqErr.Constraint)
		return ErrUnknownCampaign
	case "22":
		logger.Debug("[ingest] store rejected value", "code", string(pqErr.Code), "column", pqErr.Column)
		return ErrRejectedValue
	}
	return err
}
