// Package series turns dated metric records into chart-ready time series.
//
// Records are ordered by date, optionally grouped into week or month buckets,
// and reduced to one point per bucket holding the arithmetic mean of each
// requested metric.
package series

import (
	"fmt"
	"strings"
)

// Granularity selects the temporal resolution of a series.
type Granularity string

// Supported granularities.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity normalizes s. An empty string selects Daily. Unknown
// values are returned as-is together with ErrUnsupportedGranularity so
// callers can still pass them through to Consolidate.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return g, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, s)
	}
}

// Valid reports whether g is one of the supported granularities.
func (g Granularity) Valid() bool {
	return g == Daily || g == Weekly || g == Monthly
}

func (g Granularity) String() string { return string(g) }

// ValuePolicy decides how an unparseable metric value enters a mean.
type ValuePolicy int

const (
	// ValueAsZero counts an unparseable value as 0 and keeps it in the divisor.
	ValueAsZero ValuePolicy = iota
	// ValueSkip drops an unparseable value from both the sum and the divisor.
	ValueSkip
)

// ParseValuePolicy accepts "zero" or "skip" (case-insensitive). Empty means zero.
func ParseValuePolicy(s string) (ValuePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return ValueAsZero, nil
	case "skip":
		return ValueSkip, nil
	default:
		return ValueAsZero, fmt.Errorf("%w: %q", ErrUnknownValuePolicy, s)
	}
}

func (p ValuePolicy) String() string {
	if p == ValueSkip {
		return "skip"
	}
	return "zero"
}
