package queue

// Option applies a configuration option to the NotificationQueue.
type Option func(*NotificationQueue)

// WithInitialCapacity sets the capacity the backing buffer is created with
// after each drain.
func WithInitialCapacity(capacity int) Option {
	return func(q *NotificationQueue) {
		if capacity > 0 {
			q.initialCapacity = capacity
		}
	}
}
