package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresCompanyAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeEstimateAccepted}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{CompanyID: "co"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAccept(context.Background(), "co", "u", "estimator", "cons-1", "est-1", ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].EstimateID != "est-1" {
		t.Fatalf("expected estimate id captured")
	}
	if evs[0].Type != EventTypeEstimateAccepted {
		t.Fatalf("expected estimate_accepted")
	}
}
