package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorPrimary = "#3C7DD9"
	colorSuccess = "#04B575"
	colorError   = "#E5484D"
	colorInfo    = "#8A8A8A"
	colorText    = "#FAFAFA"
	colorMatch   = "#F5A524"
	colorBorder  = "#5B8DEF"
)

// Styles for the TUI application
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginTop(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorText)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)

	// TermStyle marks occurrences of the search term inside caption text
	TermStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorMatch))
)
