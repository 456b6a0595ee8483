package reporting

import (
	"context"
	"testing"
	"time"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
)

func TestPipelineSummary_CompanyIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Consultations = []consultations.Consultation{
		{ID: "c1", CompanyID: "co-1", PipelineStatus: consultations.PipelineReady, EstimateID: "e1", DurationSeconds: 600, CreatedAt: now},
		{ID: "c2", CompanyID: "co-1", PipelineStatus: consultations.PipelineTranscribing, DurationSeconds: 300, CreatedAt: now},
		{ID: "c3", CompanyID: "co-1", PipelineStatus: consultations.PipelineError, CreatedAt: now},
		{ID: "c4", CompanyID: "co-2", PipelineStatus: consultations.PipelineReady, CreatedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.PipelineSummary(context.Background(), PipelineSummaryRequest{
		CompanyID: "co-1",
		Range:     TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalConsultations != 3 {
		t.Fatalf("expected 3 consultations, got %d", out.TotalConsultations)
	}
	if out.ReadyCount != 1 || out.ProcessingCount != 1 || out.ErrorCount != 1 {
		t.Fatalf("unexpected status counts: %+v", out)
	}
	if out.AcceptedCount != 1 || out.TranscribedCount != 1 {
		t.Fatalf("unexpected accepted/transcribed: %+v", out)
	}
	if out.AverageDurationSeconds != 300 {
		t.Fatalf("expected avg 300s, got %d", out.AverageDurationSeconds)
	}
}

func TestEstimatesSummary_Aggregates(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Estimates = []estimates.Estimate{
		{ID: "e1", CompanyID: "co-1", ServiceType: "plumbing", Status: estimates.EstimateStatusDraft, CreatedAt: now,
			LineItems: []estimates.LineItem{{Description: "Labor", Quantity: 2, UnitPriceMinor: 10000}}},
		{ID: "e2", CompanyID: "co-1", ServiceType: "plumbing", Status: estimates.EstimateStatusApproved, CreatedAt: now,
			LineItems: []estimates.LineItem{{Description: "Heater", Quantity: 1, UnitPriceMinor: 180000}}},
		{ID: "e3", CompanyID: "co-1", ServiceType: "hvac", Status: estimates.EstimateStatusDraft, CreatedAt: now,
			LineItems: []estimates.LineItem{{Description: "Filter", Quantity: 1, UnitPriceMinor: 4000}}},
	}
	svc := NewService(repo)

	out, err := svc.EstimatesSummary(context.Background(), EstimatesSummaryRequest{
		CompanyID:   "co-1",
		ServiceType: "plumbing",
		Range:       TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalEstimates != 2 {
		t.Fatalf("expected 2 estimates, got %d", out.TotalEstimates)
	}
	if out.TotalValueMinor != 200000 {
		t.Fatalf("expected total 200000, got %d", out.TotalValueMinor)
	}
	if out.AverageValueMinor != 100000 {
		t.Fatalf("expected average 100000, got %d", out.AverageValueMinor)
	}
	if out.DraftCount != 1 || out.ApprovedCount != 1 {
		t.Fatalf("unexpected status counts: %+v", out)
	}
}

func TestSummaries_RejectInvalidRanges(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	now := time.Now().UTC()

	if _, err := svc.PipelineSummary(context.Background(), PipelineSummaryRequest{CompanyID: "co-1"}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.EstimatesSummary(context.Background(), EstimatesSummaryRequest{
		CompanyID: "co-1",
		Range:     TimeRange{From: now, To: now.Add(-time.Hour)},
	}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.PipelineSummary(context.Background(), PipelineSummaryRequest{
		Range: TimeRange{From: now.Add(-time.Hour), To: now},
	}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
