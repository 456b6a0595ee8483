package pricing

import (
	"context"
	"errors"
	"time"
)

// Service resolves price-book entries for estimate line items.
//
// Contract:
// - Lookup is by company and catalog ref, honoring effective windows.
// - Pure calculation + repository lookups; no provider calls.
type Service struct {
	repo  CatalogRepository
	clock func() time.Time
}

func NewService(repo CatalogRepository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var (
	ErrItemNotFound    = errors.New("catalog item not found")
	ErrInvalidQuoteReq = errors.New("invalid quote request")
)

type QuoteRequest struct {
	CompanyID  string
	CatalogRef string

	// Quantity in the item's unit. Must be non-negative.
	Quantity float64

	// At determines which effective price to use. If zero, service clock is used.
	At time.Time
}

type Quote struct {
	CompanyID  string
	CatalogRef string
	Name       string
	Unit       string

	Currency       string
	UnitPriceMinor int64
	TotalMinor     int64
}

// QuoteItem resolves the effective catalog price for a ref and computes the
// line total at the requested quantity.
func (s *Service) QuoteItem(ctx context.Context, req QuoteRequest) (Quote, error) {
	if req.CompanyID == "" || req.CatalogRef == "" {
		return Quote{}, ErrInvalidQuoteReq
	}
	if req.Quantity < 0 {
		return Quote{}, ErrInvalidQuoteReq
	}

	at := req.At
	if at.IsZero() {
		at = s.clock().UTC()
	}

	item, ok, err := s.repo.FindItem(ctx, req.CompanyID, req.CatalogRef, at)
	if err != nil {
		return Quote{}, err
	}
	if !ok {
		return Quote{}, ErrItemNotFound
	}

	return Quote{
		CompanyID:      req.CompanyID,
		CatalogRef:     req.CatalogRef,
		Name:           item.Name,
		Unit:           item.Unit,
		Currency:       item.Currency,
		UnitPriceMinor: item.UnitPriceMinor,
		TotalMinor:     int64(req.Quantity*float64(item.UnitPriceMinor) + 0.5),
	}, nil
}

// CatalogRepository abstracts price-book persistence.
// Implementation can be Postgres, cached, etc.
type CatalogRepository interface {
	FindItem(ctx context.Context, companyID, ref string, at time.Time) (CatalogItem, bool, error)
}
