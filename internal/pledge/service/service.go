package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"pledge/internal/notify"
	"pledge/internal/payment"
	"pledge/internal/platform/metrics"
	"pledge/internal/pledge/models"
	"pledge/internal/pledge/store"
	dErrors "pledge/pkg/domain-errors"
)

var tracer = otel.Tracer("pledge/intake")

// Submission carries the validated fields of one pledge request.
type Submission struct {
	Email       string
	Token       string
	AmountCents int64
	Occupation  string
	Employer    string
	Phone       string
	Target      string
	Note        string
}

// Service runs the intake pipeline: charge, persist, enqueue notification.
// The charge happens strictly before persistence so every stored pledge has
// a customer reference.
type Service struct {
	pledges store.Store
	charger payment.Charger
	queue   notify.Queue
	metrics *metrics.Metrics
	logger  *slog.Logger
	round   string
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the donation timestamp source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(pledges store.Store, charger payment.Charger, queue notify.Queue, m *metrics.Metrics, logger *slog.Logger, round string, opts ...Option) *Service {
	s := &Service{
		pledges: pledges,
		charger: charger,
		queue:   queue,
		metrics: m,
		logger:  logger,
		round:   round,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit charges the token, persists the pledge, and schedules the
// thank-you email. No step before the charge has side effects, so every
// rejection up to that point is safe to surface without compensation.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Pledge, error) {
	if sub.AmountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be a positive number of cents")
	}

	chargeCtx, span := tracer.Start(ctx, "pledge.charge")
	customer, err := s.charger.Charge(chargeCtx, sub.Token)
	span.End()
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) || dErrors.HasCode(err, dErrors.CodeUpstream) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "charge failed")
	}

	pledge, err := models.New(models.Params{
		FundraisingRound: s.round,
		Email:            sub.Email,
		Occupation:       sub.Occupation,
		Employer:         sub.Employer,
		Phone:            sub.Phone,
		Target:           sub.Target,
		AmountCents:      sub.AmountCents,
		Customer:         customer,
		Note:             sub.Note,
	}, s.clock())
	if err != nil {
		// The card was already charged; keep the reference findable.
		s.logger.ErrorContext(ctx, "pledge invalid after successful charge",
			"customer_ref", customer,
			"error", err.Error(),
		)
		return nil, err
	}

	persistCtx, span := tracer.Start(ctx, "pledge.persist")
	err = s.pledges.Create(persistCtx, pledge)
	span.End()
	if err != nil {
		// Orphaned charge: persisted nothing, charged the card. Logged
		// with the customer reference for manual reconciliation; the
		// charge is deliberately not voided here.
		s.logger.ErrorContext(ctx, "pledge persist failed after successful charge",
			"customer_ref", customer,
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist pledge")
	}
	s.metrics.PledgesCreated.Inc()

	task := notify.Task{
		Email:       pledge.Email,
		PledgeID:    pledge.ID.String(),
		AmountCents: pledge.AmountCents,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// The pledge and charge are real; failing the request now would
		// invite a retry and a double charge. The donor just misses the
		// email.
		s.logger.ErrorContext(ctx, "failed to enqueue thank-you email",
			"pledge_id", pledge.ID.String(),
			"error", err.Error(),
		)
	}

	return pledge, nil
}
