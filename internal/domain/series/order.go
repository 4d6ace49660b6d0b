package series

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/perfdash/internal/domain/timebucket"
)

// Dated is implemented by records that carry a calendar date string.
type Dated interface {
	RecordDate() string
}

// dated pairs a record with its parsed date so the date is parsed once.
type dated[R any] struct {
	rec R
	at  time.Time
}

// SortByDate returns a new slice holding records ordered ascending by date.
// Equal dates keep their input order. The input slice is not modified.
// Any unparseable date rejects the whole call with timebucket.ErrInvalidDate.
func SortByDate[R Dated](records []R, loc *time.Location) ([]R, error) {
	sorted, err := sortByDate(records, loc)
	if err != nil {
		return nil, err
	}
	out := make([]R, len(sorted))
	for i, d := range sorted {
		out[i] = d.rec
	}
	return out, nil
}

func sortByDate[R Dated](records []R, loc *time.Location) ([]dated[R], error) {
	out := make([]dated[R], len(records))
	for i, r := range records {
		at, err := timebucket.ParseDate(r.RecordDate(), loc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = dated[R]{rec: r, at: at}
	}
	slices.SortStableFunc(out, func(a, b dated[R]) int {
		return timebucket.CompareDates(a.at, b.at)
	})
	return out, nil
}
