// Package queue implements the notification queue between the sync engine
// and the dispatch loop.
//
// Producers append at detection cadence; the single consumer drains at
// delivery cadence. The queue is unbounded: enqueue never blocks and never
// fails, bounded only by memory.
package queue

import (
	"context"
	"sync"

	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/pkg/metrics"
)

// defaultInitialCapacity pre-sizes the backing slice between drains.
const defaultInitialCapacity = 64

// Event is the payload type flowing through the queue.
type Event = model.Event

// Queue provides non-blocking enqueue and atomic drain semantics.
type Queue interface {
	// Enqueue appends an event. FIFO order is preserved per producer.
	Enqueue(ctx context.Context, e Event)

	// DrainAll atomically removes and returns every queued event in
	// enqueue order, leaving the queue empty.
	DrainAll(ctx context.Context) []Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int
}

// NotificationQueue implements Queue with a mutex-guarded append-and-swap
// buffer.
type NotificationQueue struct {
	mu              sync.Mutex
	events          []Event
	initialCapacity int
}

var _ Queue = (*NotificationQueue)(nil)

// NewNotificationQueue creates an empty queue with configuration options.
func NewNotificationQueue(opts ...Option) *NotificationQueue {
	q := &NotificationQueue{
		initialCapacity: defaultInitialCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make([]Event, 0, q.initialCapacity)

	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue appends an event to the queue.
func (q *NotificationQueue) Enqueue(ctx context.Context, e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	depth := len(q.events)
	q.mu.Unlock()

	metrics.RecordEventEnqueued()
	metrics.UpdateQueueDepth(depth)
}

// DrainAll swaps the buffer out under the lock and returns it.
func (q *NotificationQueue) DrainAll(ctx context.Context) []Event {
	q.mu.Lock()
	drained := q.events
	q.events = make([]Event, 0, q.initialCapacity)
	q.mu.Unlock()

	metrics.RecordEventsDrained(len(drained))
	metrics.UpdateQueueDepth(0)
	return drained
}

// Len returns the current number of queued events.
func (q *NotificationQueue) Len(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
