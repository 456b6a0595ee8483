package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
)

func seedConsultation(t *testing.T, repo *consultations.MemoryRepo, status consultations.PipelineStatus) consultations.Consultation {
	t.Helper()
	c := consultations.Consultation{
		ID:             "cons-1",
		CompanyID:      "co-1",
		Title:          "Roof walkthrough",
		CallStatus:     consultations.CallStatusEnded,
		PipelineStatus: status,
		CreatedAt:      time.Now().UTC(),
	}
	if err := repo.CreateConsultation(context.Background(), c); err != nil {
		t.Fatalf("seed consultation: %v", err)
	}
	return c
}

func seedAsset(t *testing.T, repo *consultations.MemoryRepo, raw string) consultations.VideoCallAsset {
	t.Helper()
	a := consultations.VideoCallAsset{
		ID:              "asset-1",
		CompanyID:       "co-1",
		ConsultationID:  "cons-1",
		ExternalVideoID: "vid-ext-1",
		RecordingURL:    "https://videos.example/vid-ext-1",
		RawTranscript:   raw,
	}
	if err := repo.CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return a
}

func TestAdvanceForwardAndProjection(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineIdle)
	svc := NewService(repo, nil, nil)

	ladder := []consultations.PipelineStatus{
		consultations.PipelineRecordingReady,
		consultations.PipelineUploading,
		consultations.PipelineTranscribing,
		consultations.PipelineAnalyzing,
		consultations.PipelineGenerating,
		consultations.PipelineReady,
	}
	for _, next := range ladder {
		st, err := svc.Advance(context.Background(), "co-1", "cons-1", next)
		if err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
		if st.Status != next {
			t.Fatalf("expected %s, got %s", next, st.Status)
		}
		if want := next == consultations.PipelineReady; st.Terminal != want {
			t.Fatalf("terminal flag at %s: got %v, want %v", next, st.Terminal, want)
		}
	}
}

func TestAdvanceRejectsBackwardMove(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineGenerating)
	svc := NewService(repo, nil, nil)

	_, err := svc.Advance(context.Background(), "co-1", "cons-1", consultations.PipelineUploading)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	// Status must not have moved.
	st, err := svc.Get(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.Status != consultations.PipelineGenerating {
		t.Fatalf("status moved to %s", st.Status)
	}
}

func TestFailFromAnyStagePreservesArtifacts(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineTranscribing)
	seedAsset(t, repo, "")
	svc := NewService(repo, nil, nil)

	st, err := svc.Fail(context.Background(), "co-1", "cons-1", "transcription provider unreachable")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if st.Status != consultations.PipelineError {
		t.Fatalf("expected error status, got %s", st.Status)
	}
	if st.Error != "transcription provider unreachable" {
		t.Fatalf("error message lost: %q", st.Error)
	}
	if !st.Retryable {
		t.Fatal("stage failures must be retryable")
	}
	if !st.Terminal {
		t.Fatal("error is poll-terminal")
	}
	// Upload artifact survives a downstream failure.
	if !st.HasVideo {
		t.Fatal("video artifact must be preserved on failure")
	}
}

func TestRetryAfterErrorReentersLadder(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineError)
	svc := NewService(repo, nil, nil)

	st, err := svc.Advance(context.Background(), "co-1", "cons-1", consultations.PipelineTranscribing)
	if err != nil {
		t.Fatalf("retry advance: %v", err)
	}
	if st.Status != consultations.PipelineTranscribing {
		t.Fatalf("got %s", st.Status)
	}
	if st.Error != "" {
		t.Fatalf("error must clear on retry, got %q", st.Error)
	}
}

func TestRegenerateRewindsToAnalyzing(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineReady)
	seedAsset(t, repo, "1\n00:00:01.000 --> 00:00:02.000\n<v Alice>hello")
	svc := NewService(repo, nil, nil)

	st, err := svc.Regenerate(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if st.Status != consultations.PipelineAnalyzing {
		t.Fatalf("expected analyzing, got %s", st.Status)
	}
}

func TestRegenerateRequiresTranscript(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineReady)
	svc := NewService(repo, nil, nil)

	if _, err := svc.Regenerate(context.Background(), "co-1", "cons-1"); !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
}

func TestGetDefaultsToIdleAndIsReadOnly(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	c := seedConsultation(t, repo, "")
	svc := NewService(repo, nil, nil)

	st, err := svc.Get(context.Background(), c.CompanyID, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.Status != consultations.PipelineIdle {
		t.Fatalf("expected idle, got %s", st.Status)
	}

	// Two concurrent pollers observe identical state.
	again, err := svc.Get(context.Background(), c.CompanyID, c.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again != st {
		t.Fatalf("reads diverged: %+v vs %+v", st, again)
	}
}

func TestProjectFlags(t *testing.T) {
	c := consultations.Consultation{
		ID:             "cons-9",
		CompanyID:      "co-1",
		PipelineStatus: consultations.PipelineReady,
		EstimateID:     "est-1",
	}
	draft := estimates.Draft{ServiceType: "roofing"}
	asset := consultations.VideoCallAsset{
		ID:              "asset-9",
		ExternalVideoID: "vid-1",
		RawTranscript:   "text",
		EstimateDraft:   &draft,
	}

	st := Project(c, &asset)
	if !st.HasVideo || !st.HasTranscript || !st.HasEstimate {
		t.Fatalf("flags wrong: %+v", st)
	}
	if st.HasPage {
		t.Fatal("no page content was generated")
	}
	if st.EstimateID != "est-1" {
		t.Fatalf("estimate id lost: %+v", st)
	}
	if st.Retryable {
		t.Fatal("retryable only applies to error status")
	}
}

func TestTranscriptView(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineUploading)
	svc := NewService(repo, nil, nil)

	v, err := svc.Transcript(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if v.Status != TranscriptWaiting {
		t.Fatalf("expected waiting, got %s", v.Status)
	}

	if _, err := svc.Advance(context.Background(), "co-1", "cons-1", consultations.PipelineTranscribing); err != nil {
		t.Fatalf("advance: %v", err)
	}
	v, err = svc.Transcript(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if v.Status != TranscriptTranscribing {
		t.Fatalf("expected transcribing, got %s", v.Status)
	}

	seedAsset(t, repo, "1\n00:00:01.000 --> 00:00:05.000\n<v Alice>Hello there")
	v, err = svc.Transcript(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if v.Status != TranscriptReady {
		t.Fatalf("expected ready, got %s", v.Status)
	}
	if len(v.Entries) != 1 || v.Entries[0].Speaker != "Alice" {
		t.Fatalf("entries wrong: %+v", v.Entries)
	}
}

func TestTranscriptViewDegradedEmptyEntries(t *testing.T) {
	repo := consultations.NewMemoryRepo()
	seedConsultation(t, repo, consultations.PipelineTranscribing)
	seedAsset(t, repo, "unparsable prose with no cues")
	svc := NewService(repo, nil, nil)

	v, err := svc.Transcript(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if v.Status != TranscriptReady {
		t.Fatalf("expected ready, got %s", v.Status)
	}
	if len(v.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(v.Entries))
	}
	if v.RawText == "" {
		t.Fatal("raw text must survive for degraded downstream use")
	}
}
