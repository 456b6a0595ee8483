package consultations

import (
	"context"
	"sync"
	"time"

	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
)

// MemoryRepo is an in-memory repository for tests and early development.
// It enforces company isolation on reads and implements the same
// compare-and-set estimate linking as the Postgres repository.
type MemoryRepo struct {
	mu            sync.Mutex
	consultations map[string]Consultation
	assets        map[string]VideoCallAsset

	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		consultations: map[string]Consultation{},
		assets:        map[string]VideoCallAsset{},
		clock:         time.Now,
	}
}

func (r *MemoryRepo) CreateConsultation(ctx context.Context, c Consultation) error {
	_ = ctx
	if c.ID == "" || c.CompanyID == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consultations[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetConsultation(ctx context.Context, companyID, id string) (Consultation, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(companyID, id)
}

func (r *MemoryRepo) getLocked(companyID, id string) (Consultation, error) {
	c, ok := r.consultations[id]
	if !ok || c.CompanyID != companyID {
		return Consultation{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) UpdatePipeline(ctx context.Context, companyID, id string, status PipelineStatus, pipelineError string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.getLocked(companyID, id)
	if err != nil {
		return err
	}
	c.PipelineStatus = status
	c.PipelineError = pipelineError
	c.UpdatedAt = r.clock().UTC()
	r.consultations[id] = c
	return nil
}

func (r *MemoryRepo) ClaimEstimate(ctx context.Context, companyID, id, estimateID string) (string, bool, error) {
	_ = ctx
	if estimateID == "" {
		return "", false, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.getLocked(companyID, id)
	if err != nil {
		return "", false, err
	}
	if c.EstimateID != "" {
		return c.EstimateID, false, nil
	}
	c.EstimateID = estimateID
	c.UpdatedAt = r.clock().UTC()
	r.consultations[id] = c
	return estimateID, true, nil
}

func (r *MemoryRepo) SetPage(ctx context.Context, companyID, id, pageID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.getLocked(companyID, id)
	if err != nil {
		return err
	}
	c.PageID = pageID
	c.UpdatedAt = r.clock().UTC()
	r.consultations[id] = c
	return nil
}

func (r *MemoryRepo) CreateAsset(ctx context.Context, a VideoCallAsset) error {
	_ = ctx
	if a.ID == "" || a.CompanyID == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetAsset(ctx context.Context, companyID, assetID string) (VideoCallAsset, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getAssetLocked(companyID, assetID)
}

func (r *MemoryRepo) getAssetLocked(companyID, assetID string) (VideoCallAsset, error) {
	a, ok := r.assets[assetID]
	if !ok || a.CompanyID != companyID {
		return VideoCallAsset{}, ErrAssetNotFound
	}
	return a, nil
}

func (r *MemoryRepo) AssetByConsultation(ctx context.Context, companyID, consultationID string) (VideoCallAsset, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.CompanyID == companyID && a.ConsultationID == consultationID {
			return a, true, nil
		}
	}
	return VideoCallAsset{}, false, nil
}

func (r *MemoryRepo) SetAssetRecording(ctx context.Context, companyID, assetID, externalVideoID, recordingURL string) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		a.ExternalVideoID = externalVideoID
		a.RecordingURL = recordingURL
	})
}

func (r *MemoryRepo) SetAssetTranscript(ctx context.Context, companyID, assetID, rawTranscript string) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		a.RawTranscript = rawTranscript
		a.ProcessingError = ""
	})
}

func (r *MemoryRepo) SetAssetAnalysis(ctx context.Context, companyID, assetID, summary, scopeNotes, pricingNotes string) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		a.TranscriptSummary = summary
		a.ScopeNotes = scopeNotes
		a.PricingNotes = pricingNotes
	})
}

func (r *MemoryRepo) SetAssetDraft(ctx context.Context, companyID, assetID string, d estimates.Draft) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		draft := d
		a.EstimateDraft = &draft
		a.ProcessingError = ""
	})
}

func (r *MemoryRepo) SetAssetPageContent(ctx context.Context, companyID, assetID string, content pages.AIContent) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		a.PageContent = content
		a.ProcessingError = ""
	})
}

func (r *MemoryRepo) SetAssetError(ctx context.Context, companyID, assetID, message string) error {
	return r.mutateAsset(ctx, companyID, assetID, func(a *VideoCallAsset) {
		a.ProcessingError = message
	})
}

func (r *MemoryRepo) mutateAsset(ctx context.Context, companyID, assetID string, fn func(*VideoCallAsset)) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.getAssetLocked(companyID, assetID)
	if err != nil {
		return err
	}
	fn(&a)
	a.UpdatedAt = r.clock().UTC()
	r.assets[assetID] = a
	return nil
}
