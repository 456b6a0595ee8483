package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
)

// PostgresRepo reads reporting rows straight from the durable tables.
// Selects only the columns the summaries aggregate over.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListConsultations(ctx context.Context, companyID string, from, to time.Time) ([]consultations.Consultation, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	const q = `
SELECT id, company_id, estimate_id, pipeline_status, duration_seconds, created_at
FROM consultations
WHERE company_id = $1 AND created_at >= $2 AND created_at < $3
`
	rows, err := r.db.QueryContext(ctx, q, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]consultations.Consultation, 0)
	for rows.Next() {
		var c consultations.Consultation
		var estimateID sql.NullString
		if err := rows.Scan(&c.ID, &c.CompanyID, &estimateID, &c.PipelineStatus, &c.DurationSeconds, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.EstimateID = estimateID.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListEstimates(ctx context.Context, companyID string, from, to time.Time, serviceType string) ([]estimates.Estimate, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	const q = `
SELECT id, company_id, service_type, status, line_items, created_at
FROM estimates
WHERE company_id = $1 AND created_at >= $2 AND created_at < $3
  AND ($4 = '' OR service_type = $4)
`
	rows, err := r.db.QueryContext(ctx, q, companyID, from, to, serviceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]estimates.Estimate, 0)
	for rows.Next() {
		var e estimates.Estimate
		var lineItems []byte
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ServiceType, &e.Status, &lineItems, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(lineItems) > 0 {
			if err := json.Unmarshal(lineItems, &e.LineItems); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
