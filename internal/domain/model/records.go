// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"

	"github.com/okian/perfdash/internal/domain/series"
)

// Leg sides recorded on force plate rows.
const (
	LegRight = "Right"
	LegLeft  = "Left"
)

// Metric column names. They double as the keys of aggregated point values.
const (
	PeakEccentricForce  = "Peak_Eccentric_Force"
	PeakConcentricForce = "Peak_Concentric_Force"
	JumpHeight          = "Jump_Height"
	HighAccel           = "High_Accel"
	HighDecel           = "High_Decel"
	Distance            = "Distance"
)

// Force is one force plate observation. Metric values keep the raw string
// from the source file; parsing happens during aggregation.
type Force struct {
	ID                  int    `json:"ID"`
	Date                string `json:"Date"`
	PeakEccentricForce  string `json:"Peak_Eccentric_Force"`
	PeakConcentricForce string `json:"Peak_Concentric_Force"`
	JumpHeight          string `json:"Jump_Height"`
	Leg                 string `json:"Leg"`
	Player              string `json:"Player"`
}

// RecordDate implements series.Dated.
func (f Force) RecordDate() string { return f.Date }

// Tracking is one GPS tracking observation.
type Tracking struct {
	ID        int    `json:"ID"`
	Date      string `json:"Date"`
	HighAccel string `json:"High_Accel"`
	HighDecel string `json:"High_Decel"`
	Distance  string `json:"Distance"`
	Player    string `json:"Player"`
}

// RecordDate implements series.Dated.
func (t Tracking) RecordDate() string { return t.Date }

// GameType labels a schedule entry.
type GameType string

const (
	Practice GameType = "Practice"
	Game     GameType = "Game"
)

// ScheduleEntry pairs a date with the kind of session held on it.
type ScheduleEntry struct {
	ID   int      `json:"ID"`
	Date string   `json:"Date"`
	Type GameType `json:"Type"`
}

// DataType selects which record family a chart is built from.
type DataType string

const (
	ForcePlate   DataType = "Force Plate"
	TrackingData DataType = "Tracking"
)

// ParseDataType accepts the display names and their short aliases.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "force plate", "force", "force_plate", "forceplate":
		return ForcePlate, nil
	case "tracking":
		return TrackingData, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}

// ForceMetrics are the averaged force plate fields.
var ForceMetrics = []series.Metric[Force]{ //nolint:gochecknoglobals // read-only metric set
	{Name: PeakConcentricForce, Value: func(f Force) string { return f.PeakConcentricForce }},
	{Name: PeakEccentricForce, Value: func(f Force) string { return f.PeakEccentricForce }},
	{Name: JumpHeight, Value: func(f Force) string { return f.JumpHeight }},
}

// TrackingMetrics are the averaged tracking fields.
var TrackingMetrics = []series.Metric[Tracking]{ //nolint:gochecknoglobals // read-only metric set
	{Name: HighAccel, Value: func(t Tracking) string { return t.HighAccel }},
	{Name: HighDecel, Value: func(t Tracking) string { return t.HighDecel }},
	{Name: Distance, Value: func(t Tracking) string { return t.Distance }},
}
