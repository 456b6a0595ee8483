package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CompanyID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogGeneration records an explicit generation pass (estimate or page).
func (s *Service) LogGeneration(ctx context.Context, t EventType, companyID, actorUserID, actorRole, consultationID, message string) error {
	return s.Append(ctx, Event{
		CompanyID:      companyID,
		Type:           t,
		ActorUserID:    actorUserID,
		ActorRole:      actorRole,
		ConsultationID: consultationID,
		Message:        message,
	})
}

// LogAccept records the commit of reviewed output into durable records.
func (s *Service) LogAccept(ctx context.Context, companyID, actorUserID, actorRole, consultationID, estimateID, pageID string) error {
	return s.Append(ctx, Event{
		CompanyID:      companyID,
		Type:           EventTypeEstimateAccepted,
		ActorUserID:    actorUserID,
		ActorRole:      actorRole,
		ConsultationID: consultationID,
		EstimateID:     estimateID,
		PageID:         pageID,
		Message:        "reviewed output committed",
	})
}
