package notify

import "context"

// Task is one deferred thank-you notification. It carries only what the
// worker needs; the pledge record itself stays in the store.
type Task struct {
	Email       string `json:"email"`
	PledgeID    string `json:"pledge_id"`
	AmountCents int64  `json:"amount_cents"`
}

// Queue accepts tasks for out-of-band execution. The HTTP response never
// waits on, or reports, delivery of the email.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}
