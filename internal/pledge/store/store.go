package store

import (
	"context"

	"pledge/internal/pledge/models"
)

// Store owns the persisted pledge collection. Pledges are append-only; no
// update or delete operations exist because none are needed.
type Store interface {
	// Create persists a validated pledge. Storage failures propagate to the
	// caller unrecovered.
	Create(ctx context.Context, pledge *models.Pledge) error

	// SumAmounts returns the integer sum of all pledge amounts in cents.
	SumAmounts(ctx context.Context) (int64, error)
}
