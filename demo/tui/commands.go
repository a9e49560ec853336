package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"captionsearch/demo/client"
)

const requestTimeout = 90 * time.Second

// uploadFiles creates a command that uploads every file in one request
func uploadFiles(c *client.Client, files []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		jobs, err := c.Upload(ctx, files)
		return UploadedMsg{Jobs: jobs, Err: err}
	}
}

// pollJobs creates a command that refreshes each tracked job
func pollJobs(c *client.Client, jobs []JobView) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated := make([]JobView, len(jobs))
		for i, jv := range jobs {
			job, err := c.Job(ctx, jv.ID)
			if err != nil {
				return JobsPolledMsg{Err: err}
			}
			updated[i] = jobView(jv.File, job)
		}
		return JobsPolledMsg{Jobs: updated}
	}
}

// runSearch creates a command that searches all tracked jobs
func runSearch(c *client.Client, term string, jobs []JobView) tea.Cmd {
	ids := make([]string, len(jobs))
	for i, jv := range jobs {
		ids[i] = jv.ID
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		results, err := c.Search(ctx, term, ids)
		return SearchResultMsg{Results: results, Err: err}
	}
}

// tickCmd creates a command that ticks every 500ms for polling
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
