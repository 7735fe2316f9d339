package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"pledge/internal/platform/config"
)

// Message is a decoded Kafka record handed to a Handler.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// Handler processes messages from a topic. Returning an error stops the
// current batch from being committed so the records are redelivered.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer is a consumer-group member over the configured topic.
type Consumer struct {
	client *kgo.Client
	logger *slog.Logger
}

// New joins the consumer group for the configured topic.
func New(cfg config.Kafka, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return &Consumer{client: client, logger: logger}, nil
}

// Run polls until ctx is cancelled or the client is closed, dispatching each
// record to the handler. Offsets are committed only after a clean batch.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err.Error(),
			)
		})

		var failed bool
		fetches.EachRecord(func(record *kgo.Record) {
			if failed {
				return
			}
			msg := &Message{
				Topic:     record.Topic,
				Partition: record.Partition,
				Offset:    record.Offset,
				Key:       record.Key,
				Value:     record.Value,
			}
			if err := handler.Handle(ctx, msg); err != nil {
				c.logger.Error("handler failed, leaving batch uncommitted",
					"topic", record.Topic,
					"partition", record.Partition,
					"offset", record.Offset,
					"error", err.Error(),
				)
				failed = true
			}
		})

		if !failed {
			if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
				c.logger.Error("commit offsets", "error", err.Error())
			}
		}
	}
}

// Close leaves the group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}
