package pages

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("page or template not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store is the persistence contract for templates and committed pages.
// The pipeline only needs: read template by id, create page from template.
type Store interface {
	GetTemplate(ctx context.Context, companyID, templateID string) (Template, error)
	DefaultTemplate(ctx context.Context, companyID string) (Template, error)
	CreatePage(ctx context.Context, p Page) (Page, error)
	GetPage(ctx context.Context, companyID, pageID string) (Page, error)
}

// Service builds committed pages from templates.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Template resolves a template by id, falling back to the company default
// when templateID is empty.
func (s *Service) Template(ctx context.Context, companyID, templateID string) (Template, error) {
	if companyID == "" {
		return Template{}, ErrInvalidArgument
	}
	if templateID == "" {
		return s.store.DefaultTemplate(ctx, companyID)
	}
	return s.store.GetTemplate(ctx, companyID, templateID)
}

// CreateFromTemplate merges generated content into the template's sections and
// persists the result as a draft page.
func (s *Service) CreateFromTemplate(ctx context.Context, companyID, consultationID, templateID, title string, content AIContent) (Page, error) {
	if companyID == "" {
		return Page{}, ErrInvalidArgument
	}

	tmpl, err := s.Template(ctx, companyID, templateID)
	if err != nil {
		return Page{}, err
	}

	now := s.clock().UTC()
	p := Page{
		ID:             uuid.NewString(),
		CompanyID:      companyID,
		TemplateID:     tmpl.ID,
		ConsultationID: consultationID,
		Title:          title,
		Sections:       MergeAIContent(tmpl.Sections, content),
		Status:         PageStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.Title == "" {
		p.Title = tmpl.Name
	}
	return s.store.CreatePage(ctx, p)
}
