package pages

import "time"

// Section is a typed, orderable content block within a customer-facing page.
//
// The pipeline treats Settings and Content as opaque except for the keys it
// merges into; their per-type schema is owned by the page builder.
type Section struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Order    int            `json:"order"`
	Visible  bool           `json:"visible"`
	Settings map[string]any `json:"settings,omitempty"`
	Content  map[string]any `json:"content,omitempty"`
}

// Template is an ordered list of sections a page is built from.
type Template struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Page is a committed customer-facing page built from a template.
//
// Multi-tenant invariant: CompanyID is required on every row. Once created the
// record is owned by the page builder, not the processing pipeline.
type Page struct {
	ID             string     `json:"id" db:"id"`
	CompanyID      string     `json:"company_id" db:"company_id"`
	TemplateID     string     `json:"template_id" db:"template_id"`
	ConsultationID string     `json:"consultation_id,omitempty" db:"consultation_id"`
	Title          string     `json:"title" db:"title"`
	Sections       []Section  `json:"sections"`
	Status         PageStatus `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// AIContent maps a section-type name to a partial content object for that
// type. There is no fixed schema beyond string keys; validation belongs to the
// specific section renderer.
type AIContent map[string]map[string]any
