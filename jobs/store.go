// Package jobs tracks extraction jobs through Pending -> Running -> {Succeeded, Failed}
// and lets callers await a terminal state with a bounded budget.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"captionsearch/types"
)

var (
	// ErrNotFound is returned for unknown job ids.
	ErrNotFound = errors.New("job not found")
	// ErrTerminal is returned when a transition is attempted out of a terminal state.
	ErrTerminal = errors.New("job already terminal")
	// ErrInvalidTransition is returned for transitions the state machine forbids.
	ErrInvalidTransition = errors.New("invalid job transition")
	// ErrAwaitTimeout is returned when a job does not finish within the caller's budget.
	ErrAwaitTimeout = errors.New("timed out waiting for job")
)

// Store persists jobs. Update applies fn atomically to the current value.
type Store interface {
	Create(ctx context.Context, job *types.Job) error
	Get(ctx context.Context, id string) (*types.Job, error)
	Update(ctx context.Context, id string, fn func(job *types.Job) error) (*types.Job, error)
}

// Manager drives job state transitions over a Store.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager wraps store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Create registers a new Pending job and returns it.
func (m *Manager) Create(ctx context.Context, owner, fileName string) (*types.Job, error) {
	now := m.now()
	job := &types.Job{
		ID:        uuid.NewString(),
		Owner:     owner,
		FileName:  fileName,
		State:     types.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Get returns the job with id.
func (m *Manager) Get(ctx context.Context, id string) (*types.Job, error) {
	return m.store.Get(ctx, id)
}

// MarkRunning moves a job to Running. A job already Running is re-claimed so a
// redelivered task can resume it.
func (m *Manager) MarkRunning(ctx context.Context, id string) (*types.Job, error) {
	return m.transition(ctx, id, types.JobRunning, nil)
}

// Succeed records the result and moves the job to Succeeded.
func (m *Manager) Succeed(ctx context.Context, id string, rec *types.CaptionRecord, cacheHit bool) (*types.Job, error) {
	return m.transition(ctx, id, types.JobSucceeded, func(j *types.Job) {
		j.Result = rec
		j.CacheHit = cacheHit
	})
}

// Fail records jobErr and moves the job to Failed.
func (m *Manager) Fail(ctx context.Context, id string, jobErr *types.JobError) (*types.Job, error) {
	return m.transition(ctx, id, types.JobFailed, func(j *types.Job) {
		j.Error = jobErr
	})
}

func (m *Manager) transition(ctx context.Context, id string, to types.JobState, apply func(*types.Job)) (*types.Job, error) {
	return m.store.Update(ctx, id, func(j *types.Job) error {
		if err := checkTransition(j.State, to); err != nil {
			return err
		}
		j.State = to
		j.UpdatedAt = m.now()
		if apply != nil {
			apply(j)
		}
		return nil
	})
}

func checkTransition(from, to types.JobState) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminal, from)
	}
	switch {
	case from == types.JobPending && (to == types.JobRunning || to == types.JobFailed):
	case from == types.JobRunning && (to == types.JobRunning || to.Terminal()):
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Await polls until the job is terminal or ctx ends. Callers bound the wait
// through ctx; a ctx without deadline is given none here.
func (m *Manager) Await(ctx context.Context, id string, poll time.Duration) (*types.Job, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		job, err := m.store.Get(ctx, id)
		if err != nil && !isContextErr(err) {
			return nil, err
		}
		if err == nil && job.State.Terminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, fmt.Errorf("%w %s: %v", ErrAwaitTimeout, id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
