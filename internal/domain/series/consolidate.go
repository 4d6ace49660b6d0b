package series

import (
	"context"
	"slices"
	"time"

	"github.com/okian/perfdash/internal/domain/timebucket"
	"github.com/okian/perfdash/pkg/logger"
)

// Result is the output of Consolidate.
type Result[R any] struct {
	Granularity Granularity
	// Records is the input ordered by date. The caller's slice is untouched.
	Records []R
	// Points holds one point per record (daily) or per bucket (weekly, monthly).
	Points []Point
	// Fallback is set when the granularity was not recognized and the
	// records were passed through at daily resolution.
	Fallback bool
	// InvalidValues counts metric values that failed to parse.
	InvalidValues int
}

// Consolidate orders records by date and reduces them to the requested
// granularity. Daily returns every record as its own point, labelled with the
// record's date string. Weekly and Monthly return one mean point per bucket,
// ordered by bucket start.
func Consolidate[R Dated](ctx context.Context, records []R, g Granularity, metrics []Metric[R], opts ...Option) (Result[R], error) {
	s := newSettings(opts...)

	sorted, err := sortByDate(records, s.loc)
	if err != nil {
		return Result[R]{}, err
	}
	ordered := make([]R, len(sorted))
	for i, d := range sorted {
		ordered[i] = d.rec
	}
	res := Result[R]{Granularity: g, Records: ordered}

	var key KeyFunc[R]
	switch g {
	case Daily:
		res.Points, res.InvalidValues = dailyPoints(sorted, metrics, s.policy)
		return res, nil
	case Weekly:
		key = WeekKeyFunc[R](s.loc)
	case Monthly:
		key = MonthKeyFunc[R](s.loc)
	default:
		if s.logger != nil {
			s.logger.Warn(ctx, "unsupported granularity; passing records through",
				logger.String("granularity", string(g)),
				logger.Int("records", len(records)),
			)
		}
		res.Fallback = true
		res.Points, res.InvalidValues = dailyPoints(sorted, metrics, s.policy)
		return res, nil
	}

	buckets, err := GroupBy(ordered, key)
	if err != nil {
		return Result[R]{}, err
	}
	res.Points, res.InvalidValues = Aggregate(buckets, metrics, s.policy)
	slices.SortStableFunc(res.Points, func(a, b Point) int {
		return timebucket.CompareDates(a.Start, b.Start)
	})
	return res, nil
}

func dailyPoints[R Dated](sorted []dated[R], metrics []Metric[R], policy ValuePolicy) ([]Point, int) {
	points := make([]Point, 0, len(sorted))
	invalid := 0
	for _, d := range sorted {
		p, bad := pointOf(d.rec.RecordDate(), d.at, d.rec, metrics, policy)
		invalid += bad
		points = append(points, p)
	}
	return points, invalid
}

// Option configures Consolidate.
type Option func(*settings)

type settings struct {
	loc    *time.Location
	policy ValuePolicy
	logger logger.Logger
}

func newSettings(opts ...Option) settings {
	s := settings{loc: time.UTC, policy: ValueAsZero}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLocation sets the location dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithValuePolicy sets how unparseable metric values are averaged.
func WithValuePolicy(p ValuePolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithLogger enables the unsupported-granularity log point.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}
