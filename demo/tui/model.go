package tui

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"captionsearch/demo/client"
	"captionsearch/search"
	"captionsearch/types"
)

// State represents the client's screen state
type State string

const (
	StateUploading  State = "uploading"
	StateExtracting State = "extracting"
	StateReady      State = "ready"
	StateSearching  State = "searching"
	StateError      State = "error"
)

// maxLogs bounds the activity log shown on screen
const maxLogs = 6

// JobView is one uploaded file and its job as shown on screen
type JobView struct {
	File     string
	ID       string
	State    types.JobState
	Captions int
	Error    string
}

func jobView(file string, job *types.Job) JobView {
	jv := JobView{File: file, ID: job.ID, State: job.State}
	if job.Result != nil {
		jv.Captions = len(job.Result.Entries)
	}
	if job.Error != nil {
		jv.Error = job.Error.Error()
	}
	return jv
}

// Model represents the TUI client state (thin client)
type Model struct {
	Client *client.Client
	Files  []string

	State   State
	Jobs    []JobView
	Input   string
	Term    string
	Results []search.MatchGroup
	Logs    []string
	Err     error
}

// NewModel creates a new TUI model that will upload files on start
func NewModel(c *client.Client, files []string) Model {
	return Model{
		Client: c,
		Files:  files,
		State:  StateUploading,
		Logs:   make([]string, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return uploadFiles(m.Client, m.Files)
}

// AddLog appends a line to the activity log
func (m Model) AddLog(msg string) Model {
	m.Logs = append(m.Logs, msg)
	if len(m.Logs) > maxLogs {
		m.Logs = m.Logs[len(m.Logs)-maxLogs:]
	}
	return m
}

func (m Model) allTerminal() bool {
	for _, jv := range m.Jobs {
		if !jv.State.Terminal() {
			return false
		}
	}
	return true
}

func jobsFromUpload(uploaded map[string]string) []JobView {
	jobs := make([]JobView, 0, len(uploaded))
	for file, id := range uploaded {
		jobs = append(jobs, JobView{File: file, ID: id, State: types.JobPending})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].File < jobs[j].File })
	return jobs
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	switch m.State {
	case StateUploading:
		return StatusStyle.Render(fmt.Sprintf("📤 Uploading %d file(s)...", len(m.Files)))
	case StateExtracting:
		return StatusStyle.Render("⏳ Extracting captions...")
	case StateReady:
		return HighlightStyle.Render("✅ Ready to search")
	case StateSearching:
		return StatusStyle.Render(fmt.Sprintf("🔍 Searching for %q...", m.Term))
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		return ""
	}
}
