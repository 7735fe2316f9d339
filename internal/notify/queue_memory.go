package notify

import (
	"context"

	dErrors "pledge/pkg/domain-errors"
)

// MemoryQueue is a channel-backed queue for tests and broker-less runs. An
// in-process Worker drains it.
type MemoryQueue struct {
	tasks chan Task
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{tasks: make(chan Task, capacity)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, task Task) error {
	select {
	case q.tasks <- task:
		return nil
	default:
		return dErrors.New(dErrors.CodeUnavailable, "mail queue is full")
	}
}

// Tasks exposes the inbox the worker consumes.
func (q *MemoryQueue) Tasks() <-chan Task {
	return q.tasks
}
