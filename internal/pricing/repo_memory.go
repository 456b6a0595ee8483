package pricing

import (
	"context"
	"time"
)

// MemoryRepo is a simple in-memory price book useful for tests and early development.
// It is company-scoped and supports exact ref matches.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	Items []CatalogItem
}

func (r *MemoryRepo) FindItem(ctx context.Context, companyID, ref string, at time.Time) (CatalogItem, bool, error) {
	_ = ctx

	// Prefer the most recent effective price row.
	var best CatalogItem
	found := false

	for _, it := range r.Items {
		if it.CompanyID != companyID {
			continue
		}
		if it.Ref != ref {
			continue
		}
		if it.Status != PricingStatusActive {
			continue
		}
		if at.Before(it.EffectiveFrom) {
			continue
		}
		if it.EffectiveTo != nil && !at.Before(*it.EffectiveTo) {
			continue
		}

		if !found || it.EffectiveFrom.After(best.EffectiveFrom) {
			best = it
			found = true
		}
	}

	return best, found, nil
}
