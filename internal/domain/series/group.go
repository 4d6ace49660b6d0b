package series

import (
	"fmt"
	"time"

	"github.com/okian/perfdash/internal/domain/timebucket"
)

// BucketKey identifies a calendar period.
type BucketKey struct {
	Label string    // canonical label, e.g. "2024-01-01" or "01-2024"
	Start time.Time // first instant of the period
}

// Bucket holds the records that fall into one period, in encounter order.
type Bucket[R any] struct {
	BucketKey
	Records []R
}

// KeyFunc maps a record to its bucket.
type KeyFunc[R any] func(R) (BucketKey, error)

// GroupBy partitions records by key. Buckets come back in first-seen order
// and are created only when a record maps into them, so none is empty.
func GroupBy[R any](records []R, key KeyFunc[R]) ([]Bucket[R], error) {
	index := make(map[string]int)
	var buckets []Bucket[R]
	for i, r := range records {
		k, err := key(r)
		if err != nil {
			return nil, fmt.Errorf("group record %d: %w", i, err)
		}
		pos, ok := index[k.Label]
		if !ok {
			pos = len(buckets)
			index[k.Label] = pos
			buckets = append(buckets, Bucket[R]{BucketKey: k})
		}
		buckets[pos].Records = append(buckets[pos].Records, r)
	}
	return buckets, nil
}

// WeekKeyFunc buckets records by the Monday of their week.
func WeekKeyFunc[R Dated](loc *time.Location) KeyFunc[R] {
	return func(r R) (BucketKey, error) {
		at, err := timebucket.ParseDate(r.RecordDate(), loc)
		if err != nil {
			return BucketKey{}, err
		}
		return BucketKey{Label: timebucket.WeekKey(at), Start: timebucket.WeekStart(at)}, nil
	}
}

// MonthKeyFunc buckets records by calendar month.
func MonthKeyFunc[R Dated](loc *time.Location) KeyFunc[R] {
	return func(r R) (BucketKey, error) {
		at, err := timebucket.ParseDate(r.RecordDate(), loc)
		if err != nil {
			return BucketKey{}, err
		}
		return BucketKey{Label: timebucket.MonthKey(at), Start: timebucket.MonthStart(at)}, nil
	}
}
