package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"pledge/internal/platform/kafka"
)

// KafkaQueue publishes tasks to the mail topic for the standalone worker.
type KafkaQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaQueue(producer *kafka.Producer, topic string) *KafkaQueue {
	return &KafkaQueue{producer: producer, topic: topic}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.producer.Publish(ctx, q.topic, []byte(task.PledgeID), payload)
}
