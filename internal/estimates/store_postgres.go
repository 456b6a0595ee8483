package estimates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"fieldservice-platform/pkg/utils"
)

// PostgresStore persists estimates in Postgres.
//
// Assumed tables:
// - estimates (line_items and resources stored as JSONB)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, e Estimate) (Estimate, error) {
	if e.ID == "" || e.CompanyID == "" {
		return Estimate{}, ErrInvalidArgument
	}

	lineItems, err := json.Marshal(e.LineItems)
	if err != nil {
		return Estimate{}, err
	}
	resources, err := json.Marshal(e.Resources)
	if err != nil {
		return Estimate{}, err
	}

	const q = `
INSERT INTO estimates (
  id, company_id, customer_id, consultation_id, title, service_type, pricing_model,
  line_items, resources, customer_notes, internal_notes, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
`
	err = utils.WithTx(ctx, p.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			e.ID,
			e.CompanyID,
			nullable(e.CustomerID),
			nullable(e.ConsultationID),
			e.Title,
			e.ServiceType,
			e.Pricing,
			lineItems,
			resources,
			e.CustomerNotes,
			e.InternalNotes,
			e.Status,
			e.CreatedAt,
			e.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return Estimate{}, err
	}
	return e, nil
}

func (p *PostgresStore) Get(ctx context.Context, companyID, id string) (Estimate, error) {
	const q = `
SELECT id, company_id, customer_id, consultation_id, title, service_type, pricing_model,
       line_items, resources, customer_notes, internal_notes, status, created_at, updated_at
FROM estimates
WHERE company_id = $1 AND id = $2
`
	var e Estimate
	var customerID, consultationID sql.NullString
	var lineItems, resources []byte

	err := p.db.QueryRowContext(ctx, q, companyID, id).Scan(
		&e.ID,
		&e.CompanyID,
		&customerID,
		&consultationID,
		&e.Title,
		&e.ServiceType,
		&e.Pricing,
		&lineItems,
		&resources,
		&e.CustomerNotes,
		&e.InternalNotes,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Estimate{}, ErrNotFound
		}
		return Estimate{}, err
	}

	e.CustomerID = customerID.String
	e.ConsultationID = consultationID.String
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &e.LineItems); err != nil {
			return Estimate{}, err
		}
	}
	if len(resources) > 0 {
		if err := json.Unmarshal(resources, &e.Resources); err != nil {
			return Estimate{}, err
		}
	}
	return e, nil
}

func (p *PostgresStore) Delete(ctx context.Context, companyID, id string) error {
	const q = `DELETE FROM estimates WHERE company_id = $1 AND id = $2`
	res, err := p.db.ExecContext(ctx, q, companyID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
