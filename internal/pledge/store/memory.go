package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pledge/internal/pledge/models"
)

// InMemory keeps pledges in process memory. Used in tests and when running
// the server without a database.
type InMemory struct {
	mu      sync.RWMutex
	pledges map[uuid.UUID]*models.Pledge
}

func NewInMemory() *InMemory {
	return &InMemory{pledges: make(map[uuid.UUID]*models.Pledge)}
}

func (s *InMemory) Create(_ context.Context, pledge *models.Pledge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *pledge
	s.pledges[pledge.ID] = &copied
	return nil
}

func (s *InMemory) SumAmounts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, p := range s.pledges {
		total += p.AmountCents
	}
	return total, nil
}

// Len reports the number of stored pledges. Test helper.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pledges)
}

// All returns a snapshot of the stored pledges. Test helper.
func (s *InMemory) All() []*models.Pledge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Pledge, 0, len(s.pledges))
	for _, p := range s.pledges {
		out = append(out, p)
	}
	return out
}

// Get returns a stored pledge by ID. Test helper.
func (s *InMemory) Get(id uuid.UUID) (*models.Pledge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pledges[id]
	return p, ok
}
