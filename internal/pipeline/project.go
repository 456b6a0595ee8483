package pipeline

import (
	"fieldservice-platform/internal/consultations"
)

// State is the read-optimized processing status exposed to pollers.
//
// It is a pure projection of a consultation row and its recording asset and
// carries no independent source of truth: it can always be rebuilt from the
// two records, which keeps the cached copy safe to drop at any time.
type State struct {
	ConsultationID string                       `json:"consultation_id"`
	Status         consultations.PipelineStatus `json:"status"`
	Error          string                       `json:"error,omitempty"`

	// Retryable signals that the failed stage can be safely re-invoked.
	// Stored errors only ever come from stage failures (precondition
	// violations never transition state), so it tracks the error status.
	Retryable bool `json:"retryable,omitempty"`

	// Terminal tells pollers to stop: the status will not change again
	// without an explicit retry, regenerate or accept call.
	Terminal bool `json:"terminal"`

	VideoCallID     string `json:"video_call_id,omitempty"`
	ExternalVideoID string `json:"external_video_id,omitempty"`

	HasVideo      bool `json:"has_video"`
	HasTranscript bool `json:"has_transcript"`
	HasEstimate   bool `json:"has_estimate"`
	HasPage       bool `json:"has_page"`

	EstimateID string `json:"estimate_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Project builds the poller-facing state from the underlying records.
// asset may be nil when no recording exists yet.
func Project(c consultations.Consultation, asset *consultations.VideoCallAsset) State {
	s := State{
		ConsultationID: c.ID,
		Status:         c.PipelineStatus,
		Error:          c.PipelineError,
		EstimateID:     c.EstimateID,
		PageID:         c.PageID,
	}
	if s.Status == "" {
		s.Status = consultations.PipelineIdle
	}
	s.Retryable = s.Status == consultations.PipelineError
	s.Terminal = IsTerminal(s.Status)

	if asset != nil {
		s.VideoCallID = asset.ID
		s.ExternalVideoID = asset.ExternalVideoID
		s.HasVideo = asset.RecordingURL != "" || asset.ExternalVideoID != ""
		s.HasTranscript = asset.HasTranscript()
		s.HasEstimate = asset.HasEstimate()
		s.HasPage = asset.HasPage()
	}
	return s
}
