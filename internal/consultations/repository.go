package consultations

import (
	"context"
	"errors"

	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
)

var (
	ErrNotFound        = errors.New("consultation not found")
	ErrAssetNotFound   = errors.New("video call asset not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository is the persistence contract for consultations and their
// recording assets. All reads and writes are company-scoped.
type Repository interface {
	CreateConsultation(ctx context.Context, c Consultation) error
	GetConsultation(ctx context.Context, companyID, id string) (Consultation, error)

	// UpdatePipeline sets the stored pipeline status and error message.
	// Transition legality is the pipeline service's job, not the repository's.
	UpdatePipeline(ctx context.Context, companyID, id string, status PipelineStatus, pipelineError string) error

	// ClaimEstimate links an estimate to the consultation if and only if no
	// estimate is linked yet (compare-and-set). It returns the linked
	// estimate id and whether this call performed the link. Two concurrent
	// accepts cannot both claim.
	ClaimEstimate(ctx context.Context, companyID, id, estimateID string) (linkedID string, claimed bool, err error)

	// SetPage records the committed page produced alongside an accepted
	// estimate.
	SetPage(ctx context.Context, companyID, id, pageID string) error

	CreateAsset(ctx context.Context, a VideoCallAsset) error
	GetAsset(ctx context.Context, companyID, assetID string) (VideoCallAsset, error)

	// AssetByConsultation returns the recording asset linked to a
	// consultation, reporting ok=false when none is linked yet.
	AssetByConsultation(ctx context.Context, companyID, consultationID string) (VideoCallAsset, bool, error)

	SetAssetRecording(ctx context.Context, companyID, assetID, externalVideoID, recordingURL string) error
	SetAssetTranscript(ctx context.Context, companyID, assetID, rawTranscript string) error

	// SetAssetAnalysis stores the transcript summary and the scope/pricing
	// scratch fields produced during analysis.
	SetAssetAnalysis(ctx context.Context, companyID, assetID, summary, scopeNotes, pricingNotes string) error

	SetAssetDraft(ctx context.Context, companyID, assetID string, d estimates.Draft) error
	SetAssetPageContent(ctx context.Context, companyID, assetID string, content pages.AIContent) error
	SetAssetError(ctx context.Context, companyID, assetID, message string) error
}
