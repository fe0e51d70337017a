// Package httpretry wraps outbound HTTP calls with bounded retries,
// exponential backoff and full jitter.
package httpretry

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/ignite/advent-ledger/internal/pkg/logger"
)

// Doer executes HTTP requests. *http.Client and *Client both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client retries transient failures of an underlying Doer.
type Client struct {
	doer       Doer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithBackoff sets the first retry delay and the cap on later ones.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.baseDelay = base
		}
		if max >= base {
			c.maxDelay = max
		}
	}
}

// New wraps doer. A nil doer uses an http.Client with a 30s timeout;
// maxRetries <= 0 means 3 retries after the first attempt.
func New(doer Doer, maxRetries int, opts ...Option) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	c := &Client{
		doer:       doer,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req, retrying network errors and 429/5xx gateway statuses.
// Client errors are returned at once. The last attempt's response is
// returned as-is so the caller can read its body. Requests with a body must
// set GetBody (http.NewRequest does for in-memory readers) to be retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			if req.Body != nil && req.Body != http.NoBody {
				if req.GetBody == nil {
					return nil, lastErr
				}
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset body: %w", err)
				}
				req.Body = body
			}

			delay := c.backoff(attempt)
			logger.Debug("[httpretry] retrying", "attempt", attempt, "max", c.maxRetries,
				"host", req.URL.Host, "path", req.URL.Path, "delay", delay.String())

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}

		resp, err := c.doer.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !retryable(resp.StatusCode) || attempt == c.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned %d", resp.StatusCode)
	}
	return nil, lastErr
}

// backoff is a random duration in [0, min(maxDelay, baseDelay*2^(attempt-1))],
// floored at a tenth of baseDelay.
func (c *Client) backoff(attempt int) time.Duration {
	ceiling := math.Min(float64(c.baseDelay)*math.Pow(2, float64(attempt-1)), float64(c.maxDelay))
	d := time.Duration(rand.Float64() * ceiling)
	if floor := c.baseDelay / 10; d < floor {
		d = floor
	}
	return d
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
