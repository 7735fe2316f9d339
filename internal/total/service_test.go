package total

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pledge/internal/platform/metrics"
	"pledge/internal/pledge/models"
	"pledge/internal/pledge/store"
)

const ttl = 300 * time.Second

func newService(t *testing.T, cache Cache, pledges store.Store) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(cache, pledges, metrics.NewForTest(), logger, ttl)
}

func addPledge(t *testing.T, s *store.InMemory, cents int64) {
	t.Helper()
	p, err := models.New(models.Params{
		FundraisingRound: "1",
		Email:            "a@b.com",
		Occupation:       "eng",
		Employer:         "acme",
		Target:           "t1",
		AmountCents:      cents,
		Customer:         "cus_" + uuid.NewString(),
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), p))
}

func TestTotalComputesAndCaches(t *testing.T) {
	ctx := context.Background()
	pledges := store.NewInMemory()
	addPledge(t, pledges, 5000)
	addPledge(t, pledges, 2500)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache().WithClock(func() time.Time { return now })
	svc := newService(t, cache, pledges)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7500), total)

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7500), cached)
}

func TestTotalStaleWithinTTL(t *testing.T) {
	ctx := context.Background()
	pledges := store.NewInMemory()
	addPledge(t, pledges, 5000)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache().WithClock(func() time.Time { return now })
	svc := newService(t, cache, pledges)

	first, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5000), first)

	// New pledges inside the TTL window are invisible; staleness is
	// intentional and bounded.
	addPledge(t, pledges, 10000)
	now = now.Add(ttl - time.Second)

	second, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5000), second)
}

func TestTotalExactAfterExpiry(t *testing.T) {
	ctx := context.Background()
	pledges := store.NewInMemory()
	addPledge(t, pledges, 5000)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache().WithClock(func() time.Time { return now })
	svc := newService(t, cache, pledges)

	_, err := svc.Total(ctx)
	require.NoError(t, err)

	addPledge(t, pledges, 10000)
	now = now.Add(ttl + time.Second)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(15000), total)
}

func TestTotalFirstCacheWriterWins(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache().WithClock(func() time.Time { return now })

	// Two concurrent misses both computed a sum; the second populate is a
	// silent no-op and both callers keep their own result.
	require.NoError(t, cache.Add(ctx, 5000, ttl))
	require.NoError(t, cache.Add(ctx, 7500, ttl))

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5000), cached)
}

func TestTotalStoreFailure(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	svc := newService(t, cache, &brokenStore{})

	_, err := svc.Total(ctx)
	require.Error(t, err)
}

func TestTotalCacheWriteFailureStillReturnsSum(t *testing.T) {
	ctx := context.Background()
	pledges := store.NewInMemory()
	addPledge(t, pledges, 5000)

	svc := newService(t, &brokenCache{}, pledges)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5000), total)
}

type brokenStore struct{}

func (b *brokenStore) Create(context.Context, *models.Pledge) error { return errors.New("down") }
func (b *brokenStore) SumAmounts(context.Context) (int64, error) {
	return 0, errors.New("down")
}

type brokenCache struct{}

func (b *brokenCache) Get(context.Context) (int64, error) { return 0, errors.New("cache down") }
func (b *brokenCache) Add(context.Context, int64, time.Duration) error {
	return errors.New("cache down")
}
