// Package ingest advances a consultation's recording through capture, upload
// and transcription, driven by video-host webhook events.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/media"
	"fieldservice-platform/internal/pipeline"
)

var ErrInvalidArgument = errors.New("ingest: invalid argument")

// Service reacts to recording lifecycle events. Each stage is one logical
// request/response against an external provider; failures set the pipeline to
// error with a retryable message and keep every artifact already obtained.
type Service struct {
	repo        consultations.Repository
	pipeline    *pipeline.Service
	recordings  media.RecordingProvider
	transcriber media.TranscriptionProvider

	// transcribeTimeout bounds the full transcription stage including
	// provider-side polling.
	transcribeTimeout time.Duration
	log               *slog.Logger
}

func NewService(repo consultations.Repository, pl *pipeline.Service, rec media.RecordingProvider, tr media.TranscriptionProvider, transcribeTimeout time.Duration, log *slog.Logger) *Service {
	if transcribeTimeout <= 0 {
		transcribeTimeout = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:              repo,
		pipeline:          pl,
		recordings:        rec,
		transcriber:       tr,
		transcribeTimeout: transcribeTimeout,
		log:               log,
	}
}

// RecordingReady marks the consultation's recording as captured. Called from
// the video-host "recording finished" webhook.
func (s *Service) RecordingReady(ctx context.Context, companyID, consultationID string) (pipeline.State, error) {
	if companyID == "" || consultationID == "" {
		return pipeline.State{}, ErrInvalidArgument
	}
	return s.pipeline.Advance(ctx, companyID, consultationID, consultations.PipelineRecordingReady)
}

// RecordingUploaded runs the upload and transcription stages: resolves the
// hosted recording, attaches it to the consultation's asset, then fetches the
// subtitle text from the speech-to-text provider.
func (s *Service) RecordingUploaded(ctx context.Context, companyID, consultationID string) (pipeline.State, error) {
	if companyID == "" || consultationID == "" {
		return pipeline.State{}, ErrInvalidArgument
	}

	c, err := s.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return pipeline.State{}, err
	}

	if _, err := s.pipeline.Advance(ctx, companyID, consultationID, consultations.PipelineUploading); err != nil {
		return pipeline.State{}, err
	}

	asset, err := s.ensureAsset(ctx, c)
	if err != nil {
		return pipeline.State{}, err
	}

	rec, err := s.recordings.RecordingByRoom(ctx, c.RoomRef)
	if err != nil {
		return s.failStage(ctx, companyID, consultationID, asset.ID, err)
	}
	if err := s.repo.SetAssetRecording(ctx, companyID, asset.ID, rec.ExternalVideoID, rec.URL); err != nil {
		return pipeline.State{}, err
	}

	if _, err := s.pipeline.Advance(ctx, companyID, consultationID, consultations.PipelineTranscribing); err != nil {
		return pipeline.State{}, err
	}

	trCtx, cancel := context.WithTimeout(ctx, s.transcribeTimeout)
	defer cancel()

	raw, err := s.transcriber.Transcribe(trCtx, rec.ExternalVideoID)
	if err != nil {
		// The uploaded recording survives a transcription failure.
		return s.failStage(ctx, companyID, consultationID, asset.ID, err)
	}
	if err := s.repo.SetAssetTranscript(ctx, companyID, asset.ID, raw); err != nil {
		return pipeline.State{}, err
	}

	s.log.Info("transcript captured", "consultation_id", consultationID, "bytes", len(raw))
	return s.pipeline.Get(ctx, companyID, consultationID)
}

// RetryTranscription re-runs the upload/transcription stages after an error.
// Safe because provider calls have no side effects beyond a fresh request.
func (s *Service) RetryTranscription(ctx context.Context, companyID, consultationID string) (pipeline.State, error) {
	return s.RecordingUploaded(ctx, companyID, consultationID)
}

func (s *Service) ensureAsset(ctx context.Context, c consultations.Consultation) (consultations.VideoCallAsset, error) {
	asset, ok, err := s.repo.AssetByConsultation(ctx, c.CompanyID, c.ID)
	if err != nil {
		return consultations.VideoCallAsset{}, err
	}
	if ok {
		return asset, nil
	}

	now := time.Now().UTC()
	asset = consultations.VideoCallAsset{
		ID:             uuid.NewString(),
		CompanyID:      c.CompanyID,
		ConsultationID: c.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return consultations.VideoCallAsset{}, err
	}
	return asset, nil
}

func (s *Service) failStage(ctx context.Context, companyID, consultationID, assetID string, cause error) (pipeline.State, error) {
	if err := s.repo.SetAssetError(ctx, companyID, assetID, cause.Error()); err != nil {
		s.log.Warn("asset error write failed", "err", err)
	}
	st, err := s.pipeline.Fail(ctx, companyID, consultationID, cause.Error())
	if err != nil {
		s.log.Warn("pipeline fail write failed", "err", err)
	}
	return st, cause
}
