package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/perfdash/internal/domain/model"
)

const utf8BOM = "\ufeff"

// header maps column names to positions.
type header map[string]int

func newHeader(row []string, required ...string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if _, dup := h[name]; !dup && name != "" {
			h[name] = i
		}
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return h, nil
}

// get returns the trimmed cell for col, or "" when the row is short or the
// column is absent.
func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// id reads the ID column, falling back to the 1-based data row number.
func (h header) id(row []string, n int) int {
	if v, err := strconv.Atoi(h.get(row, "ID")); err == nil {
		return v
	}
	return n
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// decode turns a table into records. Blank rows are skipped.
func decode[T any](rows [][]string, required []string, build func(h header, row []string, n int) T) ([]T, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	h, err := newHeader(rows[0], required...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows)-1)
	n := 0
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		n++
		out = append(out, build(h, row, n))
	}
	return out, nil
}

var forceColumns = []string{ //nolint:gochecknoglobals // column contract
	"Date", model.PeakEccentricForce, model.PeakConcentricForce, model.JumpHeight, "Leg", "Player",
}

func decodeForces(rows [][]string) ([]model.Force, error) {
	return decode(rows, forceColumns, func(h header, row []string, n int) model.Force {
		return model.Force{
			ID:                  h.id(row, n),
			Date:                h.get(row, "Date"),
			PeakEccentricForce:  h.get(row, model.PeakEccentricForce),
			PeakConcentricForce: h.get(row, model.PeakConcentricForce),
			JumpHeight:          h.get(row, model.JumpHeight),
			Leg:                 h.get(row, "Leg"),
			Player:              h.get(row, "Player"),
		}
	})
}

var trackingColumns = []string{ //nolint:gochecknoglobals // column contract
	"Date", model.HighAccel, model.HighDecel, model.Distance, "Player",
}

func decodeTracking(rows [][]string) ([]model.Tracking, error) {
	return decode(rows, trackingColumns, func(h header, row []string, n int) model.Tracking {
		return model.Tracking{
			ID:        h.id(row, n),
			Date:      h.get(row, "Date"),
			HighAccel: h.get(row, model.HighAccel),
			HighDecel: h.get(row, model.HighDecel),
			Distance:  h.get(row, model.Distance),
			Player:    h.get(row, "Player"),
		}
	})
}

func decodeSchedule(rows [][]string) ([]model.ScheduleEntry, error) {
	return decode(rows, []string{"Date", "Type"}, func(h header, row []string, n int) model.ScheduleEntry {
		return model.ScheduleEntry{
			ID:   h.id(row, n),
			Date: h.get(row, "Date"),
			Type: gameType(h.get(row, "Type")),
		}
	})
}

// gameType accepts the names and the 0/1 ordinals exported by older sheets.
func gameType(v string) model.GameType {
	switch strings.ToLower(v) {
	case "0", "practice":
		return model.Practice
	case "1", "game":
		return model.Game
	default:
		return model.GameType(v)
	}
}
