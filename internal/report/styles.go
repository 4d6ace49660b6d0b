package report

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED") // purple
	mutedColor   = lipgloss.Color("#6B7280") // gray
	warnColor    = lipgloss.Color("#F59E0B") // yellow

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	unitStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	cellStyle = lipgloss.NewStyle()

	warnStyle = lipgloss.NewStyle().
			Foreground(warnColor)
)
