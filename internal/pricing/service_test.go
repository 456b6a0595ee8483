package pricing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQuoteItemPicksMostRecentEffectivePrice(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &MemoryRepo{Items: []CatalogItem{
		{CompanyID: "co-1", Ref: "labor.plumbing", Currency: "USD", UnitPriceMinor: 9500, EffectiveFrom: base, Status: PricingStatusActive},
		{CompanyID: "co-1", Ref: "labor.plumbing", Currency: "USD", UnitPriceMinor: 10500, EffectiveFrom: base.AddDate(0, 3, 0), Status: PricingStatusActive},
		{CompanyID: "co-2", Ref: "labor.plumbing", Currency: "USD", UnitPriceMinor: 100, EffectiveFrom: base, Status: PricingStatusActive},
	}}
	svc := NewService(repo)

	q, err := svc.QuoteItem(context.Background(), QuoteRequest{
		CompanyID:  "co-1",
		CatalogRef: "labor.plumbing",
		Quantity:   2.5,
		At:         base.AddDate(0, 6, 0),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.UnitPriceMinor != 10500 {
		t.Fatalf("unit price = %d, want newer effective price 10500", q.UnitPriceMinor)
	}
	if q.TotalMinor != 26250 {
		t.Fatalf("total = %d, want 26250", q.TotalMinor)
	}
}

func TestQuoteItemHonorsEffectiveWindowAndStatus(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := base.AddDate(0, 1, 0)
	repo := &MemoryRepo{Items: []CatalogItem{
		{CompanyID: "co-1", Ref: "fee.trip", UnitPriceMinor: 5000, EffectiveFrom: base, EffectiveTo: &end, Status: PricingStatusActive},
		{CompanyID: "co-1", Ref: "fee.retired", UnitPriceMinor: 100, EffectiveFrom: base, Status: PricingStatusRetired},
	}}
	svc := NewService(repo)

	if _, err := svc.QuoteItem(context.Background(), QuoteRequest{CompanyID: "co-1", CatalogRef: "fee.trip", Quantity: 1, At: end.AddDate(0, 1, 0)}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expired window err = %v, want ErrItemNotFound", err)
	}
	if _, err := svc.QuoteItem(context.Background(), QuoteRequest{CompanyID: "co-1", CatalogRef: "fee.retired", Quantity: 1, At: base.AddDate(0, 0, 1)}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("retired err = %v, want ErrItemNotFound", err)
	}
}

func TestQuoteItemRejectsInvalidRequests(t *testing.T) {
	svc := NewService(&MemoryRepo{})
	cases := []QuoteRequest{
		{CompanyID: "", CatalogRef: "x", Quantity: 1},
		{CompanyID: "co-1", CatalogRef: "", Quantity: 1},
		{CompanyID: "co-1", CatalogRef: "x", Quantity: -1},
	}
	for _, req := range cases {
		if _, err := svc.QuoteItem(context.Background(), req); !errors.Is(err, ErrInvalidQuoteReq) {
			t.Fatalf("req %+v err = %v, want ErrInvalidQuoteReq", req, err)
		}
	}
}
