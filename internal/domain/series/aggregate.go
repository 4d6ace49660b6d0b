package series

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Metric names a numeric field and how to read its raw string value.
type Metric[R any] struct {
	Name  string
	Value func(R) string
}

// Point is one chart sample: a date label and a value per metric.
// A metric missing from Values had no usable input for this point.
type Point struct {
	Date   string             `json:"date"`
	Start  time.Time          `json:"-"`
	Count  int                `json:"count"`
	Values map[string]float64 `json:"values"`
}

// Value returns the value of the named metric.
func (p Point) Value(name string) (float64, bool) {
	v, ok := p.Values[name]
	return v, ok
}

// Aggregate reduces each bucket to a Point holding the mean of every metric.
// It returns the points in bucket order and the number of values that failed
// to parse.
func Aggregate[R any](buckets []Bucket[R], metrics []Metric[R], policy ValuePolicy) ([]Point, int) {
	points := make([]Point, 0, len(buckets))
	invalid := 0
	for _, b := range buckets {
		p := Point{
			Date:   b.Label,
			Start:  b.Start,
			Count:  len(b.Records),
			Values: make(map[string]float64, len(metrics)),
		}
		for _, m := range metrics {
			mean, ok, bad := meanOf(b.Records, m, policy)
			invalid += bad
			if ok {
				p.Values[m.Name] = mean
			}
		}
		points = append(points, p)
	}
	return points, invalid
}

// meanOf averages one metric over records. ok is false when nothing could
// be averaged (only possible under ValueSkip).
func meanOf[R any](records []R, m Metric[R], policy ValuePolicy) (mean float64, ok bool, invalid int) {
	var sum float64
	n := 0
	for _, r := range records {
		v, parsed := parseValue(m.Value(r))
		if !parsed {
			invalid++
			if policy == ValueSkip {
				continue
			}
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false, invalid
	}
	return sum / float64(n), true, invalid
}

// pointOf builds a single-record point for daily series.
func pointOf[R any](label string, at time.Time, r R, metrics []Metric[R], policy ValuePolicy) (Point, int) {
	p := Point{
		Date:   label,
		Start:  at,
		Count:  1,
		Values: make(map[string]float64, len(metrics)),
	}
	invalid := 0
	for _, m := range metrics {
		v, parsed := parseValue(m.Value(r))
		if !parsed {
			invalid++
			if policy == ValueSkip {
				continue
			}
		}
		p.Values[m.Name] = v
	}
	return p, invalid
}

// parseValue reads a decimal string. Failures and non-finite values such
// as "NaN" or "inf" yield (0, false).
func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
