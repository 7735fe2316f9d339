package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pledge/internal/platform/metrics"
)

// Email is a rendered two-part message ready for delivery.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Templates holds the raw thank-you bodies. Placeholders are {name},
// {tx_id} and {total}.
type Templates struct {
	Text string
	HTML string
}

// LoadTemplates reads thank-you.txt and thank-you.html from dir.
func LoadTemplates(dir string) (Templates, error) {
	text, err := os.ReadFile(filepath.Join(dir, "thank-you.txt"))
	if err != nil {
		return Templates{}, fmt.Errorf("read text template: %w", err)
	}
	html, err := os.ReadFile(filepath.Join(dir, "thank-you.html"))
	if err != nil {
		return Templates{}, fmt.Errorf("read html template: %w", err)
	}
	return Templates{Text: string(text), HTML: string(html)}, nil
}

const subject = "Thank you for your pledge"

// Notifier renders and sends thank-you emails for completed pledges.
type Notifier struct {
	sender    Sender
	templates Templates
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewNotifier(sender Sender, templates Templates, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		templates: templates,
		metrics:   m,
		logger:    logger,
	}
}

// Notify renders both bodies and sends one two-part email. The display name
// is the donor's email address until the form collects a real name, and the
// total is whole dollars by integer division, remainder discarded.
func (n *Notifier) Notify(ctx context.Context, task Task) error {
	replacer := strings.NewReplacer(
		"{name}", task.Email,
		"{tx_id}", task.PledgeID,
		"{total}", "$"+strconv.FormatInt(task.AmountCents/100, 10),
	)

	email := Email{
		To:       task.Email,
		Subject:  subject,
		TextBody: replacer.Replace(n.templates.Text),
		HTMLBody: replacer.Replace(n.templates.HTML),
	}

	if err := n.sender.Send(ctx, email); err != nil {
		n.metrics.EmailsFailed.Inc()
		return fmt.Errorf("send thank-you for pledge %s: %w", task.PledgeID, err)
	}

	n.metrics.EmailsSent.Inc()
	n.logger.InfoContext(ctx, "thank-you email sent",
		"pledge_id", task.PledgeID,
	)
	return nil
}
