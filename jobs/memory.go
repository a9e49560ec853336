package jobs

import (
	"context"
	"sync"

	"captionsearch/types"
)

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*types.Job
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*types.Job)}
}

func (m *MemoryStore) Create(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(job *types.Job) error) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.jobs[id] = &cp
	out := cp
	return &out, nil
}
