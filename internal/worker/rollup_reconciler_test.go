package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/distlock"
	"github.com/ignite/advent-ledger/internal/service/rollup"
)

type fakeLister struct {
	ids   []string
	err   error
	since time.Time
}

func (f *fakeLister) ActiveCampaigns(_ context.Context, since time.Time) ([]string, error) {
	f.since = since
	return f.ids, f.err
}

type fakeRebuilder struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
	days  []time.Time
}

func (f *fakeRebuilder) Rebuild(_ context.Context, campaignID string, day time.Time) (*domain.AnalyticsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, campaignID)
	f.days = append(f.days, day)
	if f.fail[campaignID] {
		return nil, errors.New("compute failed")
	}
	return &domain.AnalyticsSummary{CampaignID: campaignID, Date: day, TotalViews: 3}, nil
}

type fakeInvalidator struct{ ids []string }

func (f *fakeInvalidator) Invalidate(_ context.Context, campaignID string) error {
	f.ids = append(f.ids, campaignID)
	return nil
}

func newLock(t *testing.T, key string) distlock.Lock {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return distlock.NewRedisLock(client, key, time.Minute)
}

func TestReconcilerRebuildsYesterday(t *testing.T) {
	clock := rollup.NewFixedClock(time.Date(2025, 12, 10, 0, 15, 0, 0, time.UTC))
	lister := &fakeLister{ids: []string{"c1", "c2"}}
	rebuilder := &fakeRebuilder{}
	cache := &fakeInvalidator{}

	r := NewRollupReconciler(lister, rebuilder, cache, newLock(t, "reconcile"), clock, 0)
	n, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	yesterday := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, n)
	assert.Equal(t, yesterday, lister.since)
	assert.Equal(t, []string{"c1", "c2"}, rebuilder.calls)
	for _, d := range rebuilder.days {
		assert.Equal(t, yesterday, d)
	}
	assert.Equal(t, []string{"c1", "c2"}, cache.ids)
	assert.Equal(t, DefaultReconcileInterval, r.interval)
}

func TestReconcilerSkipsFailingCampaign(t *testing.T) {
	lister := &fakeLister{ids: []string{"c1", "c2", "c3"}}
	rebuilder := &fakeRebuilder{fail: map[string]bool{"c2": true}}
	cache := &fakeInvalidator{}

	r := NewRollupReconciler(lister, rebuilder, cache, newLock(t, "reconcile"), nil, time.Hour)
	n, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"c1", "c3"}, cache.ids)
}

func TestReconcilerFailsWhenEverythingFails(t *testing.T) {
	rebuilder := &fakeRebuilder{fail: map[string]bool{"c1": true}}
	r := NewRollupReconciler(&fakeLister{ids: []string{"c1"}}, rebuilder, nil, newLock(t, "reconcile"), nil, time.Hour)
	_, err := r.RunOnce(context.Background())
	assert.Error(t, err)

	listErr := errors.New("db down")
	r = NewRollupReconciler(&fakeLister{err: listErr}, rebuilder, nil, newLock(t, "reconcile"), nil, time.Hour)
	_, err = r.RunOnce(context.Background())
	assert.ErrorIs(t, err, listErr)
}

func TestReconcilerTickHonoursLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	holder := distlock.NewRedisLock(client, "reconcile", time.Minute)
	ok, err := holder.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	rebuilder := &fakeRebuilder{}
	r := NewRollupReconciler(&fakeLister{ids: []string{"c1"}}, rebuilder, nil,
		distlock.NewRedisLock(client, "reconcile", time.Minute), nil, time.Hour)

	r.tick(context.Background())
	assert.Empty(t, rebuilder.calls)

	require.NoError(t, holder.Release(context.Background()))
	r.tick(context.Background())
	assert.Equal(t, []string{"c1"}, rebuilder.calls)
}

func TestReconcilerStartStopsOnCancel(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	r := NewRollupReconciler(&fakeLister{ids: []string{"c1"}}, rebuilder, nil, newLock(t, "reconcile"), nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		rebuilder.mu.Lock()
		defer rebuilder.mu.Unlock()
		return len(rebuilder.calls) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
