package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// PipelineSummaryRequest requests aggregated consultation pipeline metrics.
// Company isolation: CompanyID is required.

type PipelineSummaryRequest struct {
	CompanyID string    `json:"company_id"`
	Range     TimeRange `json:"range"`
}

type PipelineSummary struct {
	CompanyID string `json:"company_id"`

	TotalConsultations int `json:"total_consultations"`

	IdleCount       int `json:"idle_count"`
	ProcessingCount int `json:"processing_count"`
	ReadyCount      int `json:"ready_count"`
	ErrorCount      int `json:"error_count"`

	TranscribedCount int `json:"transcribed_count"`
	AcceptedCount    int `json:"accepted_count"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

// EstimatesSummaryRequest requests aggregated estimate metrics.

type EstimatesSummaryRequest struct {
	CompanyID   string    `json:"company_id"`
	Range       TimeRange `json:"range"`
	ServiceType string    `json:"service_type,omitempty"`
}

type EstimatesSummary struct {
	CompanyID   string `json:"company_id"`
	ServiceType string `json:"service_type,omitempty"`

	TotalEstimates int `json:"total_estimates"`

	DraftCount    int `json:"draft_count"`
	SentCount     int `json:"sent_count"`
	ApprovedCount int `json:"approved_count"`
	DeclinedCount int `json:"declined_count"`

	TotalValueMinor   int64 `json:"total_value_minor"`
	AverageValueMinor int64 `json:"average_value_minor"`
}
