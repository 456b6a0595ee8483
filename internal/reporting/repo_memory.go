package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.
// It enforces company isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Consultations []consultations.Consultation
	Estimates     []estimates.Estimate
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListConsultations(ctx context.Context, companyID string, from, to time.Time) ([]consultations.Consultation, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]consultations.Consultation, 0)
	for _, c := range r.Consultations {
		if c.CompanyID != companyID {
			continue
		}
		if !c.CreatedAt.IsZero() {
			if c.CreatedAt.Before(from) || !c.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListEstimates(ctx context.Context, companyID string, from, to time.Time, serviceType string) ([]estimates.Estimate, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]estimates.Estimate, 0)
	for _, e := range r.Estimates {
		if e.CompanyID != companyID {
			continue
		}
		if !e.CreatedAt.IsZero() {
			if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
				continue
			}
		}
		if serviceType != "" && e.ServiceType != serviceType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
