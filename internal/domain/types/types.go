// Package types contains the response shapes served to chart renderers.
package types

import "encoding/json"

// Chart is every panel for one player, data type and granularity.
type Chart struct {
	Player      string  `json:"player"`
	DataType    string  `json:"data_type"`
	Granularity string  `json:"granularity"`
	Fallback    bool    `json:"fallback"`
	Version     string  `json:"version"`
	Panels      []Panel `json:"panels"`
}

// Panel is one line chart.
type Panel struct {
	Title  string   `json:"title"`
	Unit   string   `json:"unit,omitempty"`
	Series []string `json:"series"`
	Points []Point  `json:"points"`
}

// Point is one x-axis sample. It marshals flat, with each metric value and
// identifying attribute as a top-level key next to "Date".
type Point struct {
	Date   string
	Label  string
	Count  int
	Values map[string]float64
	// Attrs carries identifying fields such as Player and Leg on daily points.
	Attrs map[string]string
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Values)+len(p.Attrs)+3)
	for k, v := range p.Attrs {
		out[k] = v
	}
	for k, v := range p.Values {
		out[k] = v
	}
	out["Date"] = p.Date
	out["label"] = p.Label
	out["count"] = p.Count
	return json.Marshal(out)
}

// Annotation describes what was scheduled on a date.
type Annotation struct {
	Date      string `json:"date"`
	Type      string `json:"type,omitempty"`
	Scheduled bool   `json:"scheduled"`
	Label     string `json:"label"`
}

// Players lists the roster.
type Players struct {
	Players []string `json:"players"`
}
