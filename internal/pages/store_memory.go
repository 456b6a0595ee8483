package pages

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory template/page store for tests and early
// development. It enforces company isolation on reads.
type MemoryStore struct {
	mu        sync.Mutex
	templates map[string]Template
	pages     map[string]Page

	// defaults maps company_id to its default template id.
	defaults map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: map[string]Template{},
		pages:     map[string]Page{},
		defaults:  map[string]string{},
	}
}

// PutTemplate seeds a template; the first template for a company becomes its
// default.
func (m *MemoryStore) PutTemplate(t Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
	if _, ok := m.defaults[t.CompanyID]; !ok {
		m.defaults[t.CompanyID] = t.ID
	}
}

func (m *MemoryStore) GetTemplate(ctx context.Context, companyID, templateID string) (Template, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok || t.CompanyID != companyID {
		return Template{}, ErrNotFound
	}
	return t, nil
}

func (m *MemoryStore) DefaultTemplate(ctx context.Context, companyID string) (Template, error) {
	m.mu.Lock()
	id, ok := m.defaults[companyID]
	m.mu.Unlock()
	if !ok {
		return Template{}, ErrNotFound
	}
	return m.GetTemplate(ctx, companyID, id)
}

func (m *MemoryStore) CreatePage(ctx context.Context, p Page) (Page, error) {
	_ = ctx
	if p.ID == "" || p.CompanyID == "" {
		return Page{}, ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[p.ID] = p
	return p, nil
}

func (m *MemoryStore) GetPage(ctx context.Context, companyID, pageID string) (Page, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[pageID]
	if !ok || p.CompanyID != companyID {
		return Page{}, ErrNotFound
	}
	return p, nil
}
