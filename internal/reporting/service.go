package reporting

import (
	"context"
	"errors"
	"time"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce company filtering.
// - Implementations should read the durable records, never pipeline caches.

type Repository interface {
	ListConsultations(ctx context.Context, companyID string, from, to time.Time) ([]consultations.Consultation, error)
	ListEstimates(ctx context.Context, companyID string, from, to time.Time, serviceType string) ([]estimates.Estimate, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) PipelineSummary(ctx context.Context, req PipelineSummaryRequest) (PipelineSummary, error) {
	if req.CompanyID == "" {
		return PipelineSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return PipelineSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return PipelineSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListConsultations(ctx, req.CompanyID, req.Range.From, req.Range.To)
	if err != nil {
		return PipelineSummary{}, err
	}

	out := PipelineSummary{CompanyID: req.CompanyID}
	for _, c := range rows {
		out.TotalConsultations++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.EstimateID != "" {
			out.AcceptedCount++
		}
		switch c.PipelineStatus {
		case consultations.PipelineIdle, "":
			out.IdleCount++
		case consultations.PipelineReady:
			out.ReadyCount++
		case consultations.PipelineError:
			out.ErrorCount++
		default:
			out.ProcessingCount++
		}
		// Stages at or past analyzing imply a captured transcript.
		switch c.PipelineStatus {
		case consultations.PipelineAnalyzing, consultations.PipelineGenerating, consultations.PipelineReady:
			out.TranscribedCount++
		}
	}
	if out.TotalConsultations > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalConsultations
	}
	return out, nil
}

func (s *Service) EstimatesSummary(ctx context.Context, req EstimatesSummaryRequest) (EstimatesSummary, error) {
	if req.CompanyID == "" {
		return EstimatesSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return EstimatesSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return EstimatesSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListEstimates(ctx, req.CompanyID, req.Range.From, req.Range.To, req.ServiceType)
	if err != nil {
		return EstimatesSummary{}, err
	}

	out := EstimatesSummary{CompanyID: req.CompanyID, ServiceType: req.ServiceType}
	for _, e := range rows {
		out.TotalEstimates++
		// Line totals are always computed from their factors, never stored.
		var value int64
		for _, li := range e.LineItems {
			value += li.TotalMinor()
		}
		out.TotalValueMinor += value

		switch e.Status {
		case estimates.EstimateStatusDraft:
			out.DraftCount++
		case estimates.EstimateStatusSent:
			out.SentCount++
		case estimates.EstimateStatusApproved:
			out.ApprovedCount++
		case estimates.EstimateStatusDeclined:
			out.DeclinedCount++
		}
	}
	if out.TotalEstimates > 0 {
		out.AverageValueMinor = out.TotalValueMinor / int64(out.TotalEstimates)
	}
	return out, nil
}
