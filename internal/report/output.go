package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/perfdash/internal/domain/types"
)

const missing = "-"

// result wraps JSON output.
type result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func printJSON(w io.Writer, data any) error {
	out, err := json.MarshalIndent(result{Success: true, Data: data}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// PrintError writes err in the output mode selected by asJSON.
func PrintError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		out, _ := json.MarshalIndent(result{Success: false, Error: err.Error()}, "", "  ")
		fmt.Fprintln(w, string(out))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func printPlayers(w io.Writer, players []string) {
	fmt.Fprintln(w, titleStyle.Render("Players"))
	if len(players) == 0 {
		fmt.Fprintln(w, unitStyle.Render("no players loaded"))
		return
	}
	for _, p := range players {
		fmt.Fprintln(w, "  "+p)
	}
}

func printChart(w io.Writer, c types.Chart) {
	fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(c.Player), unitStyle.Render(c.DataType+" / "+c.Granularity))
	if c.Fallback {
		fmt.Fprintln(w, warnStyle.Render("unsupported granularity; showing daily values"))
	}
	for _, p := range c.Panels {
		fmt.Fprintln(w)
		printPanel(w, p)
	}
}

func printPanel(w io.Writer, p types.Panel) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(p.Title), unitStyle.Render(p.Unit))
	if len(p.Points) == 0 {
		fmt.Fprintln(w, unitStyle.Render("no data"))
		return
	}

	head := append([]string{"Date"}, p.Series...)
	head = append(head, "Count", "Schedule")
	rows := make([][]string, len(p.Points))
	for i, pt := range p.Points {
		row := make([]string, 0, len(head))
		row = append(row, pt.Date)
		for _, s := range p.Series {
			row = append(row, formatValue(pt.Values, s))
		}
		row = append(row, strconv.Itoa(pt.Count), scheduleType(pt.Label))
		rows[i] = row
	}

	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	fmt.Fprintln(w, renderRow(head, widths, headerStyle))
	for _, row := range rows {
		fmt.Fprintln(w, renderRow(row, widths, cellStyle))
	}
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = style.Width(widths[i]).Render(c)
	}
	return strings.TrimRight(strings.Join(out, "  "), " ")
}

func formatValue(values map[string]float64, name string) string {
	v, ok := values[name]
	if !ok {
		return missing
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// scheduleType pulls the session type out of a tooltip label.
func scheduleType(label string) string {
	_, t, ok := strings.Cut(label, "Type: ")
	if !ok {
		return missing
	}
	return strings.TrimSpace(t)
}
