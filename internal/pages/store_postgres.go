package pages

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"fieldservice-platform/pkg/utils"
)

// PostgresStore persists templates and pages in Postgres.
//
// Assumed tables:
// - page_templates (sections as JSONB, is_default flag per company)
// - pages (sections as JSONB)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) GetTemplate(ctx context.Context, companyID, templateID string) (Template, error) {
	const q = `
SELECT id, company_id, name, sections, created_at, updated_at
FROM page_templates
WHERE company_id = $1 AND id = $2
`
	return p.scanTemplate(p.db.QueryRowContext(ctx, q, companyID, templateID))
}

func (p *PostgresStore) DefaultTemplate(ctx context.Context, companyID string) (Template, error) {
	const q = `
SELECT id, company_id, name, sections, created_at, updated_at
FROM page_templates
WHERE company_id = $1 AND is_default = TRUE
ORDER BY created_at
LIMIT 1
`
	return p.scanTemplate(p.db.QueryRowContext(ctx, q, companyID))
}

func (p *PostgresStore) scanTemplate(row *sql.Row) (Template, error) {
	var t Template
	var sections []byte
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &sections, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return Template{}, err
		}
	}
	return t, nil
}

func (p *PostgresStore) CreatePage(ctx context.Context, pg Page) (Page, error) {
	if pg.ID == "" || pg.CompanyID == "" {
		return Page{}, ErrInvalidArgument
	}
	sections, err := json.Marshal(pg.Sections)
	if err != nil {
		return Page{}, err
	}

	const q = `
INSERT INTO pages (
  id, company_id, template_id, consultation_id, title, sections, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	err = utils.WithTx(ctx, p.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			pg.ID,
			pg.CompanyID,
			pg.TemplateID,
			nullIfEmpty(pg.ConsultationID),
			pg.Title,
			sections,
			pg.Status,
			pg.CreatedAt,
			pg.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return Page{}, err
	}
	return pg, nil
}

func (p *PostgresStore) GetPage(ctx context.Context, companyID, pageID string) (Page, error) {
	const q = `
SELECT id, company_id, template_id, consultation_id, title, sections, status, created_at, updated_at
FROM pages
WHERE company_id = $1 AND id = $2
`
	var pg Page
	var consultationID sql.NullString
	var sections []byte

	err := p.db.QueryRowContext(ctx, q, companyID, pageID).Scan(
		&pg.ID,
		&pg.CompanyID,
		&pg.TemplateID,
		&consultationID,
		&pg.Title,
		&sections,
		&pg.Status,
		&pg.CreatedAt,
		&pg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	pg.ConsultationID = consultationID.String
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &pg.Sections); err != nil {
			return Page{}, err
		}
	}
	return pg, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
