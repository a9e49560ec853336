package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"captionsearch/types"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case UploadedMsg:
		return m.handleUploaded(msg)
	case TickMsg:
		if m.State == StateExtracting {
			return m, pollJobs(m.Client, m.Jobs)
		}
	case JobsPolledMsg:
		return m.handleJobsPolled(msg)
	case SearchResultMsg:
		return m.handleSearchResult(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}
	if m.State != StateReady {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		m.Input += string(msg.Runes)
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeyEnter:
		if m.Input == "" {
			return m, nil
		}
		m.Term = m.Input
		m.Input = ""
		m.State = StateSearching
		return m, runSearch(m.Client, m.Term, m.Jobs)
	}
	return m, nil
}

// handleUploaded starts polling the accepted jobs
func (m Model) handleUploaded(msg UploadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && len(msg.Jobs) == 0 {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	if msg.Err != nil {
		m = m.AddLog(msg.Err.Error())
	}
	m.Jobs = jobsFromUpload(msg.Jobs)
	m.State = StateExtracting
	m = m.AddLog(fmt.Sprintf("Submitted %d job(s)", len(m.Jobs)))
	return m, tickCmd()
}

// handleJobsPolled updates job states and stops polling once all are done
func (m Model) handleJobsPolled(msg JobsPolledMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m = m.AddLog("Poll failed: " + msg.Err.Error())
		return m, tickCmd()
	}
	for i, jv := range msg.Jobs {
		if i < len(m.Jobs) && m.Jobs[i].State != jv.State && jv.State.Terminal() {
			if jv.State == types.JobFailed {
				m = m.AddLog(fmt.Sprintf("%s failed: %s", jv.File, jv.Error))
			} else {
				m = m.AddLog(fmt.Sprintf("%s: %d captions", jv.File, jv.Captions))
			}
		}
	}
	m.Jobs = msg.Jobs
	if m.allTerminal() {
		m.State = StateReady
		return m, nil
	}
	return m, tickCmd()
}

// handleSearchResult shows results and returns to the prompt
func (m Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	m.State = StateReady
	if msg.Err != nil {
		m = m.AddLog("Search failed: " + msg.Err.Error())
		return m, nil
	}
	m.Results = msg.Results
	return m, nil
}
