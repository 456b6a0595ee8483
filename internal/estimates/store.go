package estimates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("estimate not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNegativeQuantity = errors.New("line item quantity must be non-negative")
	ErrNegativePrice    = errors.New("line item unit price must be non-negative")
)

// Store is the persistence contract for committed estimates.
type Store interface {
	Create(ctx context.Context, e Estimate) (Estimate, error)
	Get(ctx context.Context, companyID, id string) (Estimate, error)

	// Delete removes an estimate that was never linked to a consultation.
	// Used only to roll back the loser of a concurrent accept race.
	Delete(ctx context.Context, companyID, id string) error
}

// Service creates committed estimate records.
//
// Tenancy invariant: company_id is required and enforced on every operation.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// CreateFromDraft materializes a reviewed draft into a durable estimate.
func (s *Service) CreateFromDraft(ctx context.Context, companyID, consultationID, customerID, title string, d Draft) (Estimate, error) {
	if companyID == "" {
		return Estimate{}, ErrInvalidArgument
	}
	if err := d.Validate(); err != nil {
		return Estimate{}, err
	}

	now := s.clock().UTC()
	e := Estimate{
		ID:             uuid.NewString(),
		CompanyID:      companyID,
		CustomerID:     customerID,
		ConsultationID: consultationID,
		Title:          title,
		ServiceType:    d.ServiceType,
		Pricing:        d.Pricing,
		LineItems:      append([]LineItem(nil), d.LineItems...),
		Resources:      d.Resources,
		CustomerNotes:  d.CustomerNotes,
		InternalNotes:  d.InternalNotes,
		Status:         EstimateStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if e.Pricing == "" {
		e.Pricing = PricingFlat
	}
	if e.Title == "" {
		e.Title = "Estimate"
	}
	return s.store.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (Estimate, error) {
	if companyID == "" || id == "" {
		return Estimate{}, ErrInvalidArgument
	}
	return s.store.Get(ctx, companyID, id)
}
