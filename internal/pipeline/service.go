package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/transcript"
)

var (
	ErrIllegalTransition = errors.New("pipeline: illegal status transition")
	ErrNoTranscript      = errors.New("pipeline: transcript not available yet")
	ErrInvalidArgument   = errors.New("pipeline: invalid argument")
)

// Service owns pipeline status transitions and the poller-facing projection.
//
// Contract:
//   - Advance is monotonic: backward moves are rejected except through the
//     explicit Regenerate path.
//   - Get is read-only and safe for concurrent pollers; it serves a short-lived
//     cached projection and rebuilds it from the records on a miss.
//   - Stage failures preserve already-obtained artifacts: Fail stores the error
//     message but never clears transcripts or generation output.
type Service struct {
	repo  consultations.Repository
	cache *redis.Client // optional; nil disables the projection cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewService(repo consultations.Repository, cache *redis.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:  repo,
		cache: cache,
		// Matches the client poll interval; a stale projection is visible
		// for at most one poll.
		ttl: 5 * time.Second,
		log: log,
	}
}

// Get returns the current projection for a consultation. Never blocks on
// upstream work; reads the cache first and reconstructs from the records if
// no cached copy is warm.
func (s *Service) Get(ctx context.Context, companyID, consultationID string) (State, error) {
	if companyID == "" || consultationID == "" {
		return State{}, ErrInvalidArgument
	}

	if cached, ok := s.cachedState(ctx, companyID, consultationID); ok {
		return cached, nil
	}

	st, err := s.project(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	s.storeState(ctx, companyID, st)
	return st, nil
}

// Advance moves the pipeline forward to a new stage. Backward transitions are
// rejected; use Regenerate for the explicit rewind.
func (s *Service) Advance(ctx context.Context, companyID, consultationID string, to consultations.PipelineStatus) (State, error) {
	return s.transition(ctx, companyID, consultationID, to, "")
}

// Fail transitions the pipeline to error with a human-readable message.
// Artifacts produced by earlier stages are left untouched.
func (s *Service) Fail(ctx context.Context, companyID, consultationID, message string) (State, error) {
	if message == "" {
		message = "processing failed"
	}
	return s.transition(ctx, companyID, consultationID, consultations.PipelineError, message)
}

// Regenerate rewinds the pipeline to the analyzing stage for an explicit,
// user-initiated re-run of generation. It requires a transcript; the pipeline
// never silently re-generates content on its own.
func (s *Service) Regenerate(ctx context.Context, companyID, consultationID string) (State, error) {
	if companyID == "" || consultationID == "" {
		return State{}, ErrInvalidArgument
	}

	asset, ok, err := s.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	if !ok || !asset.HasTranscript() {
		return State{}, ErrNoTranscript
	}

	if err := s.repo.UpdatePipeline(ctx, companyID, consultationID, consultations.PipelineAnalyzing, ""); err != nil {
		return State{}, err
	}
	s.invalidate(ctx, companyID, consultationID)

	st, err := s.project(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	s.storeState(ctx, companyID, st)
	s.log.Info("pipeline regenerate", "consultation_id", consultationID, "status", st.Status)
	return st, nil
}

func (s *Service) transition(ctx context.Context, companyID, consultationID string, to consultations.PipelineStatus, message string) (State, error) {
	if companyID == "" || consultationID == "" {
		return State{}, ErrInvalidArgument
	}

	c, err := s.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}

	from := c.PipelineStatus
	if from == "" {
		from = consultations.PipelineIdle
	}
	if !canAdvance(from, to) {
		return State{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	if err := s.repo.UpdatePipeline(ctx, companyID, consultationID, to, message); err != nil {
		return State{}, err
	}
	s.invalidate(ctx, companyID, consultationID)

	st, err := s.project(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	s.storeState(ctx, companyID, st)

	if to == consultations.PipelineError {
		s.log.Warn("pipeline stage failed", "consultation_id", consultationID, "error", message)
	} else {
		s.log.Info("pipeline advance", "consultation_id", consultationID, "from", from, "to", to)
	}
	return st, nil
}

// TranscriptView is the transcript surface exposed to the review UI.
type TranscriptView struct {
	Status  TranscriptStatus   `json:"status"`
	Entries []transcript.Entry `json:"entries"`
	RawText string             `json:"raw_text,omitempty"`
}

type TranscriptStatus string

const (
	TranscriptWaiting      TranscriptStatus = "waiting"
	TranscriptTranscribing TranscriptStatus = "transcribing"
	TranscriptReady        TranscriptStatus = "ready"
)

// Transcript returns the normalized transcript for a consultation. Entries may
// be empty for a ready transcript whose text parsed into no cues; the raw text
// is still returned so downstream consumers can degrade gracefully.
func (s *Service) Transcript(ctx context.Context, companyID, consultationID string) (TranscriptView, error) {
	if companyID == "" || consultationID == "" {
		return TranscriptView{}, ErrInvalidArgument
	}

	c, err := s.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return TranscriptView{}, err
	}

	asset, ok, err := s.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return TranscriptView{}, err
	}

	if ok && asset.HasTranscript() {
		return TranscriptView{
			Status:  TranscriptReady,
			Entries: transcript.Normalize(asset.RawTranscript),
			RawText: asset.RawTranscript,
		}, nil
	}
	if c.PipelineStatus == consultations.PipelineTranscribing {
		return TranscriptView{Status: TranscriptTranscribing, Entries: []transcript.Entry{}}, nil
	}
	return TranscriptView{Status: TranscriptWaiting, Entries: []transcript.Entry{}}, nil
}

func (s *Service) project(ctx context.Context, companyID, consultationID string) (State, error) {
	c, err := s.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	asset, ok, err := s.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return Project(c, nil), nil
	}
	return Project(c, &asset), nil
}

func stateKey(companyID, consultationID string) string {
	return "pipeline:state:" + companyID + ":" + consultationID
}

func (s *Service) cachedState(ctx context.Context, companyID, consultationID string) (State, bool) {
	if s.cache == nil {
		return State{}, false
	}
	raw, err := s.cache.Get(ctx, stateKey(companyID, consultationID)).Bytes()
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false
	}
	return st, true
}

func (s *Service) storeState(ctx context.Context, companyID string, st State) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	// Best effort: a cache write failure only costs a rebuild on next poll.
	if err := s.cache.Set(ctx, stateKey(companyID, st.ConsultationID), raw, s.ttl).Err(); err != nil {
		s.log.Debug("projection cache write failed", "err", err)
	}
}

// Invalidate drops the cached projection so the next poll sees record
// changes made outside a status transition, such as an accept linking an
// estimate to the consultation.
func (s *Service) Invalidate(ctx context.Context, companyID, consultationID string) {
	s.invalidate(ctx, companyID, consultationID)
}

func (s *Service) invalidate(ctx context.Context, companyID, consultationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, stateKey(companyID, consultationID)).Err(); err != nil {
		s.log.Debug("projection cache invalidate failed", "err", err)
	}
}
