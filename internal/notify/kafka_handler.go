package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"pledge/internal/platform/kafka/consumer"
)

// TaskHandler adapts the notifier to the Kafka consumer loop. Returning an
// error keeps the batch uncommitted so the broker redelivers the task.
type TaskHandler struct {
	notifier *Notifier
}

func NewTaskHandler(notifier *Notifier) *TaskHandler {
	return &TaskHandler{notifier: notifier}
}

func (h *TaskHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var task Task
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		// Malformed payloads can never succeed; swallow so the partition
		// is not wedged on a poison record.
		return nil
	}
	if task.Email == "" || task.PledgeID == "" {
		return nil
	}
	if err := h.notifier.Notify(ctx, task); err != nil {
		return fmt.Errorf("notify %s: %w", task.PledgeID, err)
	}
	return nil
}
