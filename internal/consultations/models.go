package consultations

import (
	"time"

	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
)

// Consultation represents a tenant-scoped video consultation with a customer.
//
// Multi-tenant invariant: CompanyID is required on every row.
//
// CallStatus tracks the call itself (scheduled, live, ended); PipelineStatus
// tracks recording processing and is mutated only through the pipeline
// service. Call metadata (times, duration, names) is set once the call ends
// and treated as immutable afterwards.
type Consultation struct {
	ID         string `json:"id" db:"id"`
	CompanyID  string `json:"company_id" db:"company_id"`
	CustomerID string `json:"customer_id,omitempty" db:"customer_id"`

	// EstimateID links the committed estimate produced by the accept
	// workflow. Set at most once (compare-and-set in the repository).
	EstimateID string `json:"estimate_id,omitempty" db:"estimate_id"`

	// PageID links the committed page, when page content was accepted.
	PageID string `json:"page_id,omitempty" db:"page_id"`

	Title string `json:"title" db:"title"`

	CallStatus     CallStatus     `json:"call_status" db:"call_status"`
	PipelineStatus PipelineStatus `json:"pipeline_status" db:"pipeline_status"`
	PipelineError  string         `json:"pipeline_error,omitempty" db:"pipeline_error"`

	// RoomRef is the recording room reference at the video host.
	RoomRef      string `json:"room_ref,omitempty" db:"room_ref"`
	HostName     string `json:"host_name,omitempty" db:"host_name"`
	CustomerName string `json:"customer_name,omitempty" db:"customer_name"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// DurationSeconds is the call duration in seconds.
	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusScheduled CallStatus = "scheduled"
	CallStatusLive      CallStatus = "live"
	CallStatusEnded     CallStatus = "ended"
	CallStatusCanceled  CallStatus = "canceled"
)

// PipelineStatus is the processing status of a consultation's recording.
// Ordering and transition rules live in the pipeline service; this package
// only defines the values stored on the row.
type PipelineStatus string

const (
	PipelineIdle           PipelineStatus = "idle"
	PipelineRecordingReady PipelineStatus = "recording_ready"
	PipelineUploading      PipelineStatus = "uploading"
	PipelineTranscribing   PipelineStatus = "transcribing"
	PipelineAnalyzing      PipelineStatus = "analyzing"
	PipelineGenerating     PipelineStatus = "generating"
	PipelineReady          PipelineStatus = "ready"
	PipelineError          PipelineStatus = "error"
)

// VideoCallAsset is the recording and its derived artifacts.
//
// Owned by the pipeline: only upload and generation steps write here, never
// the UI layer. ConsultationID may be empty while a recording exists before
// linkage.
type VideoCallAsset struct {
	ID             string `json:"id" db:"id"`
	CompanyID      string `json:"company_id" db:"company_id"`
	ConsultationID string `json:"consultation_id,omitempty" db:"consultation_id"`

	// ExternalVideoID identifies the recording at the video host.
	ExternalVideoID string `json:"external_video_id,omitempty" db:"external_video_id"`
	RecordingURL    string `json:"recording_url,omitempty" db:"recording_url"`

	RawTranscript     string `json:"raw_transcript,omitempty" db:"raw_transcript"`
	TranscriptSummary string `json:"transcript_summary,omitempty" db:"transcript_summary"`

	// Scratch fields extracted during analysis, kept for reviewer context.
	ScopeNotes   string `json:"scope_notes,omitempty" db:"scope_notes"`
	PricingNotes string `json:"pricing_notes,omitempty" db:"pricing_notes"`

	// EstimateDraft is the latest successful generation output. A failed
	// regeneration never clears it.
	EstimateDraft *estimates.Draft `json:"estimate_draft,omitempty"`

	// PageContent is the latest generated per-section page content.
	PageContent pages.AIContent `json:"page_content,omitempty"`

	ProcessingError string `json:"processing_error,omitempty" db:"processing_error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasTranscript reports whether a transcript has been captured.
func (a VideoCallAsset) HasTranscript() bool { return a.RawTranscript != "" }

// HasEstimate reports whether a generation pass has produced an estimate draft.
func (a VideoCallAsset) HasEstimate() bool { return a.EstimateDraft != nil }

// HasPage reports whether page content has been generated.
func (a VideoCallAsset) HasPage() bool { return len(a.PageContent) > 0 }
