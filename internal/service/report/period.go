package report

import (
	"fmt"
	"strings"
	"time"
)

// Period is a reporting window preset.
type Period string

const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
	PeriodAll Period = "all"

	DefaultPeriod = Period7d
)

var periodLengths = map[Period]time.Duration{
	Period24h: 24 * time.Hour,
	Period7d:  7 * 24 * time.Hour,
	Period30d: 30 * 24 * time.Hour,
	Period90d: 90 * 24 * time.Hour,
}

// ParsePeriod accepts 24h, 7d, 30d, 90d or all. An empty string selects
// DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultPeriod, nil
	}
	if p == PeriodAll {
		return p, nil
	}
	if _, ok := periodLengths[p]; !ok {
		return "", fmt.Errorf("%w: %q (want 24h, 7d, 30d, 90d or all)", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Range returns the window [from, to] ending at now. PeriodAll has a zero
// from.
func (p Period) Range(now time.Time) (from, to time.Time) {
	to = now.UTC()
	if d, ok := periodLengths[p]; ok {
		from = to.Add(-d)
	}
	return from, to
}
