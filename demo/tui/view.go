package tui

import (
	"fmt"
	"strings"

	"captionsearch/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🔎 Caption Search"))
	b.WriteString("\n\n")

	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if len(m.Jobs) > 0 {
		b.WriteString(InfoStyle.Render("📼 Files:"))
		b.WriteString("\n")
		for _, jv := range m.Jobs {
			b.WriteString(formatJob(jv))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(InfoStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Term != "" && m.State == StateReady {
		b.WriteString(BoxStyle.Render(m.formatResults()))
		b.WriteString("\n\n")
	}

	if m.State == StateReady {
		b.WriteString(HighlightStyle.Render("Search:") + " " + m.Input + "█")
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render(TextFooterReady))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterBusy))
	}
	return b.String()
}

func formatJob(jv JobView) string {
	line := fmt.Sprintf("   %-32s %-10s", jv.File, jv.State)
	switch jv.State {
	case types.JobSucceeded:
		return StatusStyle.Render(fmt.Sprintf("%s %d captions", line, jv.Captions))
	case types.JobFailed:
		return ErrorStyle.Render(line + " " + jv.Error)
	default:
		return InfoStyle.Render(line)
	}
}

// formatResults renders the last search as one section per file
func (m Model) formatResults() string {
	var b strings.Builder
	b.WriteString(HighlightStyle.Render(fmt.Sprintf("Results for %q", m.Term)))
	b.WriteString("\n")

	total := 0
	for i, group := range m.Results {
		name := group.File
		if name == "" && i < len(m.Jobs) {
			name = m.Jobs[i].File
		}
		b.WriteString(fmt.Sprintf("\n%s (%d)\n", name, len(group.Matches)))
		for _, match := range group.Matches {
			text := strings.ReplaceAll(match.Text, "\n", " ")
			text = strings.ReplaceAll(text, m.Term, TermStyle.Render(m.Term))
			b.WriteString(fmt.Sprintf("  %s  %s\n", InfoStyle.Render(match.Start), text))
		}
		total += len(group.Matches)
	}
	if total == 0 {
		b.WriteString("\nNo matches")
	}
	return b.String()
}
