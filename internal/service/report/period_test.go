package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", Period7d, false},
		{"24h", Period24h, false},
		{"7d", Period7d, false},
		{" 30D ", Period30d, false},
		{"90d", Period90d, false},
		{"all", PeriodAll, false},
		{"1y", "", true},
		{"7", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, 12, 10, 15, 30, 0, 0, time.UTC)

	from, to := Period24h.Range(now)
	assert.Equal(t, now, to)
	assert.Equal(t, time.Date(2026, 12, 9, 15, 30, 0, 0, time.UTC), from)

	from, _ = Period30d.Range(now)
	assert.Equal(t, time.Date(2026, 11, 10, 15, 30, 0, 0, time.UTC), from)

	from, to = PeriodAll.Range(now)
	assert.True(t, from.IsZero())
	assert.Equal(t, now, to)
}

func TestQueryDayBounds(t *testing.T) {
	q := Query{
		From: time.Date(2026, 12, 9, 15, 30, 0, 0, time.UTC),
		To:   time.Date(2026, 12, 10, 0, 30, 0, 0, time.FixedZone("CET", 3600)),
	}
	assert.Equal(t, time.Date(2026, 12, 9, 0, 0, 0, 0, time.UTC), q.FromDay())
	assert.Equal(t, time.Date(2026, 12, 9, 0, 0, 0, 0, time.UTC), q.ToDay())
	assert.True(t, Query{}.FromDay().IsZero())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0.00", percent(5, 0, 2))
	assert.Equal(t, "0.0", percent(0, 0, 1))
	assert.Equal(t, "33.33", percent(1, 3, 2))
	assert.Equal(t, "66.7", percent(2, 3, 1))
	assert.Equal(t, "100.0", percent(4, 4, 1))
	assert.Equal(t, "250.00", percent(5, 2, 2))
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 0, roundSeconds(0))
	assert.Equal(t, 42, roundSeconds(41.5))
	assert.Equal(t, 41, roundSeconds(41.49))
}
