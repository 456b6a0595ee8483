package consultations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/pkg/utils"
)

// PostgresRepo persists consultations and video call assets in Postgres.
//
// Assumed tables:
// - consultations
// - video_call_assets (estimate_draft and page_content stored as JSONB)
//
// The estimate link uses a conditional UPDATE (estimate_id IS NULL) inside a
// transaction so two concurrent accepts cannot both claim the consultation.
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) CreateConsultation(ctx context.Context, c Consultation) error {
	if c.ID == "" || c.CompanyID == "" {
		return ErrInvalidArgument
	}
	const q = `
INSERT INTO consultations (
  id, company_id, customer_id, estimate_id, page_id, title,
  call_status, pipeline_status, pipeline_error, room_ref, host_name, customer_name,
  started_at, ended_at, duration_seconds, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.CompanyID,
		nullString(c.CustomerID),
		nullString(c.EstimateID),
		nullString(c.PageID),
		c.Title,
		c.CallStatus,
		c.PipelineStatus,
		nullString(c.PipelineError),
		c.RoomRef,
		c.HostName,
		c.CustomerName,
		c.StartedAt,
		c.EndedAt,
		c.DurationSeconds,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetConsultation(ctx context.Context, companyID, id string) (Consultation, error) {
	const q = `
SELECT id, company_id, customer_id, estimate_id, page_id, title,
       call_status, pipeline_status, pipeline_error, room_ref, host_name, customer_name,
       started_at, ended_at, duration_seconds, created_at, updated_at
FROM consultations
WHERE company_id = $1 AND id = $2
`
	var c Consultation
	var customerID, estimateID, pageID, pipelineError sql.NullString
	var startedAt, endedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, q, companyID, id).Scan(
		&c.ID,
		&c.CompanyID,
		&customerID,
		&estimateID,
		&pageID,
		&c.Title,
		&c.CallStatus,
		&c.PipelineStatus,
		&pipelineError,
		&c.RoomRef,
		&c.HostName,
		&c.CustomerName,
		&startedAt,
		&endedAt,
		&c.DurationSeconds,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Consultation{}, ErrNotFound
		}
		return Consultation{}, err
	}

	c.CustomerID = customerID.String
	c.EstimateID = estimateID.String
	c.PageID = pageID.String
	c.PipelineError = pipelineError.String
	if startedAt.Valid {
		t := startedAt.Time
		c.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		c.EndedAt = &t
	}
	return c, nil
}

func (r *PostgresRepo) UpdatePipeline(ctx context.Context, companyID, id string, status PipelineStatus, pipelineError string) error {
	const q = `
UPDATE consultations
SET pipeline_status = $3, pipeline_error = $4, updated_at = $5
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, id, status, nullString(pipelineError), r.clock().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) ClaimEstimate(ctx context.Context, companyID, id, estimateID string) (string, bool, error) {
	if estimateID == "" {
		return "", false, ErrInvalidArgument
	}

	var linkedID string
	var claimed bool

	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const claim = `
UPDATE consultations
SET estimate_id = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND estimate_id IS NULL
`
		res, err := tx.ExecContext(ctx, claim, companyID, id, estimateID, r.clock().UTC())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			linkedID = estimateID
			claimed = true
			return nil
		}

		// Not claimed: either already linked or the row does not exist.
		const read = `
SELECT estimate_id FROM consultations WHERE company_id = $1 AND id = $2
`
		var existing sql.NullString
		if err := tx.QueryRowContext(ctx, read, companyID, id).Scan(&existing); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		linkedID = existing.String
		return nil
	})
	return linkedID, claimed, err
}

func (r *PostgresRepo) SetPage(ctx context.Context, companyID, id, pageID string) error {
	const q = `
UPDATE consultations
SET page_id = $3, updated_at = $4
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, id, pageID, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) CreateAsset(ctx context.Context, a VideoCallAsset) error {
	if a.ID == "" || a.CompanyID == "" {
		return ErrInvalidArgument
	}
	const q = `
INSERT INTO video_call_assets (
  id, company_id, consultation_id, external_video_id, recording_url,
  raw_transcript, transcript_summary, scope_notes, pricing_notes,
  estimate_draft, page_content, processing_error, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
`
	draft, content, err := marshalArtifacts(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID,
		a.CompanyID,
		nullString(a.ConsultationID),
		a.ExternalVideoID,
		a.RecordingURL,
		a.RawTranscript,
		a.TranscriptSummary,
		a.ScopeNotes,
		a.PricingNotes,
		draft,
		content,
		nullString(a.ProcessingError),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetAsset(ctx context.Context, companyID, assetID string) (VideoCallAsset, error) {
	const q = assetSelect + ` WHERE company_id = $1 AND id = $2`
	a, err := r.scanAsset(r.db.QueryRowContext(ctx, q, companyID, assetID))
	if errors.Is(err, sql.ErrNoRows) {
		return VideoCallAsset{}, ErrAssetNotFound
	}
	return a, err
}

func (r *PostgresRepo) AssetByConsultation(ctx context.Context, companyID, consultationID string) (VideoCallAsset, bool, error) {
	const q = assetSelect + ` WHERE company_id = $1 AND consultation_id = $2 ORDER BY created_at DESC LIMIT 1`
	a, err := r.scanAsset(r.db.QueryRowContext(ctx, q, companyID, consultationID))
	if errors.Is(err, sql.ErrNoRows) {
		return VideoCallAsset{}, false, nil
	}
	if err != nil {
		return VideoCallAsset{}, false, err
	}
	return a, true, nil
}

const assetSelect = `
SELECT id, company_id, consultation_id, external_video_id, recording_url,
       raw_transcript, transcript_summary, scope_notes, pricing_notes,
       estimate_draft, page_content, processing_error, created_at, updated_at
FROM video_call_assets`

func (r *PostgresRepo) scanAsset(row *sql.Row) (VideoCallAsset, error) {
	var a VideoCallAsset
	var consultationID, processingError sql.NullString
	var draft, content []byte

	err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&consultationID,
		&a.ExternalVideoID,
		&a.RecordingURL,
		&a.RawTranscript,
		&a.TranscriptSummary,
		&a.ScopeNotes,
		&a.PricingNotes,
		&draft,
		&content,
		&processingError,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return VideoCallAsset{}, err
	}

	a.ConsultationID = consultationID.String
	a.ProcessingError = processingError.String
	if len(draft) > 0 {
		var d estimates.Draft
		if err := json.Unmarshal(draft, &d); err != nil {
			return VideoCallAsset{}, err
		}
		a.EstimateDraft = &d
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &a.PageContent); err != nil {
			return VideoCallAsset{}, err
		}
	}
	return a, nil
}

func (r *PostgresRepo) SetAssetRecording(ctx context.Context, companyID, assetID, externalVideoID, recordingURL string) error {
	const q = `
UPDATE video_call_assets
SET external_video_id = $3, recording_url = $4, updated_at = $5
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, externalVideoID, recordingURL, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func (r *PostgresRepo) SetAssetTranscript(ctx context.Context, companyID, assetID, rawTranscript string) error {
	const q = `
UPDATE video_call_assets
SET raw_transcript = $3, processing_error = NULL, updated_at = $4
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, rawTranscript, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func (r *PostgresRepo) SetAssetAnalysis(ctx context.Context, companyID, assetID, summary, scopeNotes, pricingNotes string) error {
	const q = `
UPDATE video_call_assets
SET transcript_summary = $3, scope_notes = $4, pricing_notes = $5, updated_at = $6
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, summary, scopeNotes, pricingNotes, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func (r *PostgresRepo) SetAssetDraft(ctx context.Context, companyID, assetID string, d estimates.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	const q = `
UPDATE video_call_assets
SET estimate_draft = $3, processing_error = NULL, updated_at = $4
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, raw, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func (r *PostgresRepo) SetAssetPageContent(ctx context.Context, companyID, assetID string, content pages.AIContent) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	const q = `
UPDATE video_call_assets
SET page_content = $3, processing_error = NULL, updated_at = $4
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, raw, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func (r *PostgresRepo) SetAssetError(ctx context.Context, companyID, assetID, message string) error {
	const q = `
UPDATE video_call_assets
SET processing_error = $3, updated_at = $4
WHERE company_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, companyID, assetID, message, r.clock().UTC())
	if err != nil {
		return err
	}
	return requireAssetRow(res)
}

func marshalArtifacts(a VideoCallAsset) ([]byte, []byte, error) {
	var draft, content []byte
	var err error
	if a.EstimateDraft != nil {
		draft, err = json.Marshal(a.EstimateDraft)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(a.PageContent) > 0 {
		content, err = json.Marshal(a.PageContent)
		if err != nil {
			return nil, nil, err
		}
	}
	return draft, content, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func requireAssetRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}
