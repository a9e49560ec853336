package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"captionsearch/demo/client"
	"captionsearch/search"
	"captionsearch/types"
)

func newTestModel() Model {
	return NewModel(client.NewClient("http://127.0.0.1:0", "alice"), []string{"b.ts", "a.ts"})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestUploadThenPollUntilReady(t *testing.T) {
	m := newTestModel()

	m, cmd := update(t, m, UploadedMsg{Jobs: map[string]string{"b.ts": "j2", "a.ts": "j1"}})
	if m.State != StateExtracting || cmd == nil {
		t.Fatalf("state = %s; want extracting with a tick", m.State)
	}
	if len(m.Jobs) != 2 || m.Jobs[0].File != "a.ts" || m.Jobs[1].ID != "j2" {
		t.Fatalf("jobs = %+v", m.Jobs)
	}

	m, cmd = update(t, m, JobsPolledMsg{Jobs: []JobView{
		{File: "a.ts", ID: "j1", State: types.JobSucceeded, Captions: 4},
		{File: "b.ts", ID: "j2", State: types.JobRunning},
	}})
	if m.State != StateExtracting || cmd == nil {
		t.Fatalf("state = %s; want still extracting", m.State)
	}

	m, cmd = update(t, m, JobsPolledMsg{Jobs: []JobView{
		{File: "a.ts", ID: "j1", State: types.JobSucceeded, Captions: 4},
		{File: "b.ts", ID: "j2", State: types.JobFailed, Error: "DecoderFailure: exit 1"},
	}})
	if m.State != StateReady || cmd != nil {
		t.Fatalf("state = %s; want ready with no further polling", m.State)
	}
	if len(m.Logs) == 0 {
		t.Fatal("expected activity log entries")
	}
}

func TestUploadFailure(t *testing.T) {
	m, _ := update(t, newTestModel(), UploadedMsg{Err: errors.New("server returned 401")})
	if m.State != StateError || m.Err == nil {
		t.Fatalf("state = %s err = %v", m.State, m.Err)
	}
}

func TestTypingAndSearching(t *testing.T) {
	m := newTestModel()
	m.State = StateReady
	m.Jobs = []JobView{{File: "a.ts", ID: "j1", State: types.JobSucceeded}}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Worlx")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.Input != "World" {
		t.Fatalf("input = %q", m.Input)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.State != StateSearching || m.Term != "World" || m.Input != "" || cmd == nil {
		t.Fatalf("after enter: state=%s term=%q input=%q", m.State, m.Term, m.Input)
	}

	m, _ = update(t, m, SearchResultMsg{Results: []search.MatchGroup{{
		JobID:   "j1",
		File:    "a.ts",
		Matches: []search.Match{{Index: 1, Start: "00:00:01,000", Text: "Hello World"}},
	}}})
	if m.State != StateReady || len(m.Results) != 1 {
		t.Fatalf("state = %s results = %+v", m.State, m.Results)
	}
	if view := m.View(); view == "" {
		t.Fatal("empty view")
	}
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.Input != "" {
		t.Fatalf("input accepted while uploading: %q", m.Input)
	}
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
}
