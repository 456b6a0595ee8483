package estimates

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory estimate store for tests and early development.
// It enforces company isolation on reads.
type MemoryStore struct {
	mu        sync.Mutex
	estimates map[string]Estimate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{estimates: map[string]Estimate{}}
}

func (m *MemoryStore) Create(ctx context.Context, e Estimate) (Estimate, error) {
	_ = ctx
	if e.ID == "" || e.CompanyID == "" {
		return Estimate{}, ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimates[e.ID] = e
	return e, nil
}

func (m *MemoryStore) Get(ctx context.Context, companyID, id string) (Estimate, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.estimates[id]
	if !ok || e.CompanyID != companyID {
		return Estimate{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Delete(ctx context.Context, companyID, id string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.estimates[id]
	if !ok || e.CompanyID != companyID {
		return ErrNotFound
	}
	delete(m.estimates, id)
	return nil
}

// Count reports the number of stored estimates for a company. Test helper.
func (m *MemoryStore) Count(companyID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.estimates {
		if e.CompanyID == companyID {
			n++
		}
	}
	return n
}
