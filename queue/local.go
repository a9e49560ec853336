package queue

import (
	"context"
	"log"
	"sync"

	"captionsearch/types"
)

// Local is an in-process queue served by a fixed pool of worker goroutines.
type Local struct {
	workers int
	tasks   chan types.Task

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewLocal creates a queue with the given worker count and pending buffer.
func NewLocal(workers, buffer int) *Local {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &Local{workers: workers, tasks: make(chan types.Task, buffer)}
}

// Enqueue hands task to the pool, blocking only while the buffer is full.
func (q *Local) Enqueue(ctx context.Context, task types.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Local) Start(ctx context.Context, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if q.started {
		return nil
	}
	q.started = true

	safe := Safe(handler)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i+1, safe)
	}
	log.Printf("✅ Local task queue started with %d worker(s)", q.workers)
	return nil
}

// worker runs until Close closes the buffer, so tasks accepted before shutdown
// are still handled. Handlers get a context that outlives ctx's cancellation.
func (q *Local) worker(ctx context.Context, id int, handler Handler) {
	defer q.wg.Done()
	taskCtx := context.WithoutCancel(ctx)
	for task := range q.tasks {
		if err := handler(taskCtx, task); err != nil {
			log.Printf("❌ Worker %d failed task %s (job %s): %v", id, task.Name, task.JobID, err)
		}
	}
}

// Close stops accepting tasks and waits for the workers to drain what is buffered.
func (q *Local) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
