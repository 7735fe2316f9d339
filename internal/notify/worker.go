package notify

import (
	"context"
	"log/slog"
)

// Worker drains an in-process task channel and sends notifications. Used
// when the service runs without a broker; the Kafka path lives in
// TaskHandler.
type Worker struct {
	notifier *Notifier
	inbox    <-chan Task
	logger   *slog.Logger
}

func NewWorker(notifier *Notifier, inbox <-chan Task, logger *slog.Logger) *Worker {
	return &Worker{notifier: notifier, inbox: inbox, logger: logger}
}

// Run processes tasks until ctx is cancelled. A failed send is logged and
// dropped; the in-memory queue has no redelivery.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-w.inbox:
			if err := w.notifier.Notify(ctx, task); err != nil {
				w.logger.ErrorContext(ctx, "thank-you email failed",
					"pledge_id", task.PledgeID,
					"error", err.Error(),
				)
			}
		}
	}
}
