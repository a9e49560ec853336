// Package queue dispatches pipeline tasks to workers. The producer side never
// knows whether the consumer is in-process or behind a broker.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"captionsearch/types"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// Handler processes one task. Returning an error signals the transport that the
// task was not handled; task-level failures should be recorded by the handler.
type Handler func(ctx context.Context, task types.Task) error

// Queue is the task queue boundary.
type Queue interface {
	Enqueue(ctx context.Context, task types.Task) error
	Start(ctx context.Context, handler Handler) error
	Close() error
}

// Safe wraps h so a panic in one task is logged and returned as an error
// instead of killing the worker.
func Safe(h Handler) Handler {
	return func(ctx context.Context, task types.Task) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ Task %s (job %s) panicked: %v\n%s", task.Name, task.JobID, r, debug.Stack())
				err = fmt.Errorf("task %s panicked: %v", task.Name, r)
			}
		}()
		return h(ctx, task)
	}
}
