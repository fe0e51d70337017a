package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/advent-ledger/internal/pkg/distlock"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/pkg/metrics"
)

const (
	DefaultRetentionInterval = 24 * time.Hour
	DefaultRetentionDays     = 400
	DefaultRetentionBatch    = 10000
)

// retentionTable describes how old rows of one table are found. Summary
// rows, leads and winners are never deleted here.
type retentionTable struct {
	name string
	// rowKey identifies rows for the batched delete.
	rowKey string
	// predicate selects expired rows given the cutoff as $1.
	predicate string
	// dateOnly binds the cutoff as a calendar day instead of an instant.
	dateOnly bool
}

var retentionTables = []retentionTable{
	{name: "calendar_views", rowKey: "id", predicate: "created_at < $1"},
	{name: "door_views", rowKey: "id", predicate: "created_at < $1"},
	// Only today's visitor set feeds increments; a rebuild resyncs from
	// raw views, so rows past the raw window are never read again.
	{name: "daily_visitors", rowKey: "ctid", predicate: "date < $1::date", dateOnly: true},
}

// RetentionCleaner deletes raw view events past the retention window in
// bounded batches so no single statement holds locks for long.
type RetentionCleaner struct {
	db        *sql.DB
	lock      distlock.Lock
	interval  time.Duration
	days      int
	batchSize int
	pause     time.Duration
	now       func() time.Time
}

// RetentionOption customises a RetentionCleaner.
type RetentionOption func(*RetentionCleaner)

// WithRetentionDays sets how many days of raw events are kept.
func WithRetentionDays(days int) RetentionOption {
	return func(c *RetentionCleaner) {
		if days > 0 {
			c.days = days
		}
	}
}

// WithBatchSize sets the maximum rows removed per statement.
func WithBatchSize(n int) RetentionOption {
	return func(c *RetentionCleaner) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBatchPause sets the sleep between batches.
func WithBatchPause(d time.Duration) RetentionOption {
	return func(c *RetentionCleaner) { c.pause = d }
}

// WithRetentionClock overrides the time source used for the cutoff.
func WithRetentionClock(now func() time.Time) RetentionOption {
	return func(c *RetentionCleaner) { c.now = now }
}

// NewRetentionCleaner creates a cleaner with the default window and batch size.
func NewRetentionCleaner(db *sql.DB, lock distlock.Lock, interval time.Duration, opts ...RetentionOption) *RetentionCleaner {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	c := &RetentionCleaner{
		db:        db,
		lock:      lock,
		interval:  interval,
		days:      DefaultRetentionDays,
		batchSize: DefaultRetentionBatch,
		pause:     100 * time.Millisecond,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs a cycle immediately and then on every tick until ctx is done.
func (c *RetentionCleaner) Start(ctx context.Context) {
	logger.Info("[retention] starting", "interval", c.interval.String(), "days", c.days, "batch_size", c.batchSize)
	c.tick(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("[retention] stopping")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *RetentionCleaner) tick(ctx context.Context) {
	err := distlock.Do(ctx, c.lock, func(ctx context.Context) error {
		_, err := c.RunOnce(ctx)
		return err
	})
	switch {
	case errors.Is(err, distlock.ErrNotAcquired):
		metrics.WorkerRuns.WithLabelValues("retention", "skipped").Inc()
	case err != nil:
		metrics.WorkerRuns.WithLabelValues("retention", "failed").Inc()
		logger.Error("[retention] cycle failed", "error", err.Error())
	default:
		metrics.WorkerRuns.WithLabelValues("retention", "ok").Inc()
	}
}

// RunOnce trims every raw table and returns the rows deleted per table.
func (c *RetentionCleaner) RunOnce(ctx context.Context) (map[string]int64, error) {
	start := time.Now()
	cutoff := c.now().UTC().AddDate(0, 0, -c.days)
	deleted := make(map[string]int64, len(retentionTables))

	for _, t := range retentionTables {
		var arg any = cutoff
		if t.dateOnly {
			arg = cutoff.Format(time.DateOnly)
		}
		n, err := c.batchDelete(ctx, t, arg)
		deleted[t.name] = n
		if err != nil {
			return deleted, fmt.Errorf("trim %s: %w", t.name, err)
		}
		if n > 0 {
			logger.Info("[retention] removed old events", "table", t.name, "rows", n)
		}
	}

	logger.Debug("[retention] cycle complete", "elapsed", time.Since(start).Round(time.Millisecond).String())
	return deleted, nil
}

// batchDelete repeats a LIMITed delete until a batch comes back empty. A
// missing table counts as nothing to delete so the worker tolerates a
// database that has not been migrated yet.
func (c *RetentionCleaner) batchDelete(ctx context.Context, t retentionTable, cutoff any) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE %[2]s IN (
			SELECT %[2]s FROM %[1]s
			WHERE %[3]s
			LIMIT $2
		)`, t.name, t.rowKey, t.predicate)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		qctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		res, err := c.db.ExecContext(qctx, query, cutoff, c.batchSize)
		cancel()
		if err != nil {
			if isUndefinedTable(err) {
				logger.Warn("[retention] table does not exist, skipping", "table", t.name)
				return total, nil
			}
			return total, err
		}

		affected, _ := res.RowsAffected()
		total += affected
		if affected < int64(c.batchSize) {
			return total, nil
		}
		if c.pause > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(c.pause):
			}
		}
	}
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
