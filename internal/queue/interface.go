package queue

import (
	"context"
)

// MessageInterface is a single queue delivery. Implementations carry the
// broker acknowledgement state; tests substitute mocks.
type MessageInterface interface {
	// Ack confirms the delivery was handled.
	Ack() error
	// Nack rejects the delivery. With requeue false the broker routes it
	// to the dead letter queue.
	Nack(requeue bool) error
	// GetJob returns the decoded job payload.
	GetJob() *Job
}

// JobQueue is the broker abstraction the API and worker share.
type JobQueue interface {
	// Enqueue publishes a job for asynchronous processing.
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams deliveries until ctx is cancelled. The caller must
	// ack or nack every message; prefetchCount bounds how many
	// unacknowledged deliveries this consumer holds at once. Both
	// returned channels close when consumption stops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close releases the broker connection.
	Close() error

	// HealthCheck reports whether the broker connection is usable.
	HealthCheck(ctx context.Context) error
}
