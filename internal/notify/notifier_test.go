package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pledge/internal/platform/kafka/consumer"
	"pledge/internal/platform/metrics"
)

type captureSender struct {
	mu     sync.Mutex
	sent   []Email
	err    error
	signal chan struct{}
}

func newCaptureSender() *captureSender {
	return &captureSender{signal: make(chan struct{}, 16)}
}

func (c *captureSender) Send(_ context.Context, email Email) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, email)
	c.signal <- struct{}{}
	return nil
}

func (c *captureSender) emails() []Email {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Email(nil), c.sent...)
}

func testTemplates() Templates {
	return Templates{
		Text: "Dear {name}, your pledge of {total} was recorded as {tx_id}.",
		HTML: "<p>Dear {name}, your pledge of {total} was recorded as {tx_id}.</p>",
	}
}

func newTestNotifier(sender Sender) *Notifier {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewNotifier(sender, testTemplates(), metrics.NewForTest(), logger)
}

func TestNotifyRendersPlaceholders(t *testing.T) {
	sender := newCaptureSender()
	n := newTestNotifier(sender)

	err := n.Notify(context.Background(), Task{
		Email:       "a@b.com",
		PledgeID:    "pledge-1",
		AmountCents: 5099,
	})
	require.NoError(t, err)

	sent := sender.emails()
	require.Len(t, sent, 1)
	email := sent[0]

	require.Equal(t, "a@b.com", email.To)
	require.Equal(t, "Thank you for your pledge", email.Subject)
	// Whole dollars via integer division; the 99 cents are discarded.
	require.Equal(t, "Dear a@b.com, your pledge of $50 was recorded as pledge-1.", email.TextBody)
	require.Contains(t, email.HTMLBody, "$50")
	require.Contains(t, email.HTMLBody, "pledge-1")
	require.False(t, strings.Contains(email.TextBody, "{"), "unsubstituted placeholder left in body")
}

func TestNotifySendFailure(t *testing.T) {
	sender := newCaptureSender()
	sender.err = errors.New("smtp down")
	n := newTestNotifier(sender)

	err := n.Notify(context.Background(), Task{Email: "a@b.com", PledgeID: "p1", AmountCents: 100})
	require.Error(t, err)
}

func TestLoadTemplatesMissingDir(t *testing.T) {
	_, err := LoadTemplates(t.TempDir())
	require.Error(t, err)
}

func TestWorkerDrainsQueue(t *testing.T) {
	sender := newCaptureSender()
	n := newTestNotifier(sender)

	queue := NewMemoryQueue(4)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	worker := NewWorker(n, queue.Tasks(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	require.NoError(t, queue.Enqueue(ctx, Task{Email: "a@b.com", PledgeID: "p1", AmountCents: 5000}))

	select {
	case <-sender.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not deliver the task")
	}

	cancel()
	<-done
	require.Len(t, sender.emails(), 1)
}

func TestMemoryQueueFull(t *testing.T) {
	queue := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, Task{PledgeID: "p1"}))
	require.Error(t, queue.Enqueue(ctx, Task{PledgeID: "p2"}))
}

func TestTaskHandler(t *testing.T) {
	t.Run("delivers well-formed tasks", func(t *testing.T) {
		sender := newCaptureSender()
		h := NewTaskHandler(newTestNotifier(sender))

		msg := &consumer.Message{
			Topic: "mail",
			Value: []byte(`{"email":"a@b.com","pledge_id":"p1","amount_cents":5000}`),
		}
		require.NoError(t, h.Handle(context.Background(), msg))
		require.Len(t, sender.emails(), 1)
	})

	t.Run("swallows poison records", func(t *testing.T) {
		sender := newCaptureSender()
		h := NewTaskHandler(newTestNotifier(sender))

		require.NoError(t, h.Handle(context.Background(), &consumer.Message{Value: []byte("{broken")}))
		require.NoError(t, h.Handle(context.Background(), &consumer.Message{Value: []byte(`{"email":""}`)}))
		require.Empty(t, sender.emails())
	})

	t.Run("propagates send failures for redelivery", func(t *testing.T) {
		sender := newCaptureSender()
		sender.err = errors.New("smtp down")
		h := NewTaskHandler(newTestNotifier(sender))

		msg := &consumer.Message{Value: []byte(`{"email":"a@b.com","pledge_id":"p1","amount_cents":100}`)}
		require.Error(t, h.Handle(context.Background(), msg))
	})
}
