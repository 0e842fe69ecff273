// Package bus provides the bounded submission conduit between
// trader loops and the order engine.
package bus

import (
	"context"
	"sync/atomic"

	"tradesim/internal/model"
	"tradesim/pkg/exception"
)

// Queue is a bounded, non-blocking submission queue shared by
// every trader loop as producer and the order engine as the sole
// consumer. A full queue is the system's backpressure point:
// publishers observe ErrSubmissionQueueFull and drop the intent.
type Queue struct {
	ch     chan model.Submission
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan model.Submission, capacity)}
}

// TryPublish enqueues a submission without blocking.
func (q *Queue) TryPublish(s model.Submission) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return exception.ErrSubmissionQueueClosed
	}
	select {
	case q.ch <- s:
		return nil
	default:
		return exception.ErrSubmissionQueueFull
	}
}

// Close stops the queue from accepting new submissions. Pending
// submissions remain consumable; Run drains them before exiting.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes submissions until the context is done or the
// queue is closed and drained. Queue exhaustion is the designed
// shutdown path, not a fault.
func (q *Queue) Run(ctx context.Context, handler func(model.Submission)) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-q.ch:
			if !ok {
				return
			}
			handler(s)
		}
	}
}

// Len returns the number of pending submissions.
func (q *Queue) Len() int {
	return len(q.ch)
}
