package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/advent-ledger/internal/domain"
)

// DefaultCacheTTL is used when NewCache is given a non-positive TTL.
const DefaultCacheTTL = 60 * time.Second

// Cache stores assembled reports in Redis. A nil *Cache is valid and never
// hits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns a Redis-backed report cache. A nil client returns nil.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(campaignID string, p Period) string {
	return fmt.Sprintf("report:%s:%s", campaignID, p)
}

// Get returns the cached report, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, campaignID string, p Period) (*domain.Report, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, cacheKey(campaignID, p)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached report: %w", err)
	}
	var r domain.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &r, nil
}

// Set stores the report under its campaign and period.
func (c *Cache) Set(ctx context.Context, p Period, r *domain.Report) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(r.CampaignID, p), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

// Invalidate drops every cached period of a campaign.
func (c *Cache) Invalidate(ctx context.Context, campaignID string) error {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(periodLengths)+1)
	for p := range periodLengths {
		keys = append(keys, cacheKey(campaignID, p))
	}
	keys = append(keys, cacheKey(campaignID, PeriodAll))
	return c.client.Del(ctx, keys...).Err()
}
