package tui

import (
	"time"

	"captionsearch/search"
)

// Messages for the tea program (polling-based)

// UploadedMsg is sent once the upload request returns
type UploadedMsg struct {
	Jobs map[string]string
	Err  error
}

// JobsPolledMsg carries the latest state of every tracked job
type JobsPolledMsg struct {
	Jobs []JobView
	Err  error
}

// SearchResultMsg is sent when a search completes
type SearchResultMsg struct {
	Results []search.MatchGroup
	Err     error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}
