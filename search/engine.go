// Package search answers term queries over the captions of finished jobs.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"captionsearch/jobs"
	"captionsearch/types"
)

// maxConcurrentAwaits bounds how many job handles are polled at once.
const maxConcurrentAwaits = 8

// Match is one caption entry containing the search term.
type Match struct {
	Index   int    `json:"index"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Text    string `json:"text"`
}

// MatchGroup holds the matches for one job handle.
type MatchGroup struct {
	JobID   string         `json:"job_id"`
	File    string         `json:"file"`
	State   types.JobState `json:"state"`
	Matches []Match        `json:"matches"`
}

// Engine resolves job handles and filters their captions.
type Engine struct {
	jobs    *jobs.Manager
	timeout time.Duration
	poll    time.Duration
}

// NewEngine creates an Engine. timeout bounds a whole Search; poll is the
// interval at which unfinished jobs are re-checked.
func NewEngine(manager *jobs.Manager, timeout, poll time.Duration) *Engine {
	return &Engine{jobs: manager, timeout: timeout, poll: poll}
}

// Search returns one group per handle, in handle order. Each call blocks until
// the handle's job is terminal or the search budget runs out. Failed, unknown,
// foreign, and still-unfinished jobs yield empty groups.
func (e *Engine) Search(ctx context.Context, owner, term string, handles []string) ([]MatchGroup, error) {
	groups := make([]MatchGroup, len(handles))

	awaitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentAwaits)
	for i, id := range handles {
		g.Go(func() error {
			group, err := e.resolve(awaitCtx, owner, term, id)
			if err != nil {
				return err
			}
			groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (e *Engine) resolve(ctx context.Context, owner, term, id string) (MatchGroup, error) {
	group := MatchGroup{JobID: id, Matches: []Match{}}

	job, err := e.jobs.Await(ctx, id, e.poll)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		log.Printf("Warning: search skipped unknown job %s", id)
		return group, nil
	case errors.Is(err, jobs.ErrAwaitTimeout):
		if job != nil && job.Owner == owner {
			group.State = job.State
			group.File = job.FileName
		}
		log.Printf("Warning: job %s did not finish within the search budget", id)
		return group, nil
	case err != nil:
		return group, fmt.Errorf("failed to resolve job %s: %w", id, err)
	}

	if job.Owner != owner {
		log.Printf("Warning: search by %s skipped job %s owned by someone else", owner, id)
		return group, nil
	}
	group.State = job.State
	group.File = job.FileName
	if job.State == types.JobSucceeded && job.Result != nil {
		group.Matches = Filter(job.Result.Entries, term)
	}
	return group, nil
}

// Filter returns the entries whose text contains term, case-sensitively, in
// caption order.
func Filter(entries []types.CaptionEntry, term string) []Match {
	matches := []Match{}
	for _, entry := range entries {
		if !strings.Contains(entry.Text, term) {
			continue
		}
		matches = append(matches, Match{
			Index:   entry.Index,
			StartMS: entry.StartMS,
			EndMS:   entry.EndMS,
			Start:   types.FormatTimestamp(entry.StartMS),
			End:     types.FormatTimestamp(entry.EndMS),
			Text:    entry.Text,
		})
	}
	return matches
}
