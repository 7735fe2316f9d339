package total

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pledge/internal/platform/metrics"
	"pledge/internal/pledge/store"
	dErrors "pledge/pkg/domain-errors"
	"pledge/pkg/platform/sentinel"
)

// Service computes the running total of pledged cents, cache-aside.
type Service struct {
	cache   Cache
	pledges store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	ttl     time.Duration
}

func New(cache Cache, pledges store.Store, m *metrics.Metrics, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		cache:   cache,
		pledges: pledges,
		metrics: m,
		logger:  logger,
		ttl:     ttl,
	}
}

// Total returns the cached sum when present, otherwise recomputes from the
// store and best-effort populates the cache. A failed cache write never
// fails the read; the freshly computed sum is returned regardless.
func (s *Service) Total(ctx context.Context) (int64, error) {
	cached, err := s.cache.Get(ctx)
	if err == nil {
		s.metrics.TotalCacheHits.Inc()
		return cached, nil
	}
	if !errors.Is(err, sentinel.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "total cache read failed, recomputing", "error", err.Error())
	}
	s.metrics.TotalCacheMiss.Inc()

	sum, err := s.pledges.SumAmounts(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum pledges")
	}

	if err := s.cache.Add(ctx, sum, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "total cache populate failed", "error", err.Error())
	}
	return sum, nil
}
