// Package schedule resolves chart date labels to practice or game annotations.
package schedule

import (
	"strings"

	"github.com/okian/perfdash/internal/domain/model"
)

// Index maps a date string to its schedule entry. It is built once per
// dataset and is safe for concurrent reads.
type Index struct {
	byDate map[string]model.ScheduleEntry
}

// NewIndex builds an index. When several entries share a date the first one wins.
func NewIndex(entries []model.ScheduleEntry) *Index {
	idx := &Index{byDate: make(map[string]model.ScheduleEntry, len(entries))}
	for _, e := range entries {
		key := strings.TrimSpace(e.Date)
		if key == "" {
			continue
		}
		if _, dup := idx.byDate[key]; dup {
			continue
		}
		idx.byDate[key] = e
	}
	return idx
}

// Lookup returns the entry scheduled on date. Matching is exact on the
// trimmed date string, so aggregated labels like "01-2024" never match.
func (i *Index) Lookup(date string) (model.ScheduleEntry, bool) {
	if i == nil {
		return model.ScheduleEntry{}, false
	}
	e, ok := i.byDate[strings.TrimSpace(date)]
	return e, ok
}

// Label renders the tooltip text for date.
func (i *Index) Label(date string) string {
	if e, ok := i.Lookup(date); ok {
		return "Date: " + date + " \n Type: " + string(e.Type)
	}
	return "Date: " + date
}

// Len reports the number of distinct scheduled dates.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byDate)
}
