package aigen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/internal/pipeline"
	"fieldservice-platform/pkg/utils"
)

var (
	ErrInvalidArgument    = errors.New("aigen: invalid argument")
	ErrTranscriptRequired = errors.New("aigen: transcript not available yet")
	ErrGenerationBusy     = errors.New("aigen: generation capacity reached for company")
)

// Generator orchestrates estimate and page content generation.
//
// Both operations are explicit and user-initiated; nothing here re-generates
// content on its own. A failed pass never clears the previous successful
// output: new results replace old ones only after the provider call succeeds.
type Generator struct {
	repo     consultations.Repository
	pipeline *pipeline.Service
	pages    *pages.Service
	client   Client

	// rdb backs the per-company generation concurrency cap; nil disables it.
	rdb      *redis.Client
	capLimit int

	stageTimeout time.Duration
	log          *slog.Logger
}

type GeneratorConfig struct {
	// CapLimit bounds concurrent generation passes per company. <=0 disables.
	CapLimit int

	// StageTimeout bounds one provider call. Defaults to 90s.
	StageTimeout time.Duration
}

func NewGenerator(repo consultations.Repository, pl *pipeline.Service, pg *pages.Service, client Client, rdb *redis.Client, cfg GeneratorConfig, log *slog.Logger) *Generator {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 90 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		repo:         repo,
		pipeline:     pl,
		pages:        pg,
		client:       client,
		rdb:          rdb,
		capLimit:     cfg.CapLimit,
		stageTimeout: cfg.StageTimeout,
		log:          log,
	}
}

// GenerateEstimate runs one generation pass for a consultation with a
// completed transcript, advancing the pipeline through analyzing ->
// generating -> ready. When the pipeline is already at ready (or error), the
// call is an explicit regenerate and rewinds first.
func (g *Generator) GenerateEstimate(ctx context.Context, companyID, consultationID string) (estimates.Draft, error) {
	if companyID == "" || consultationID == "" {
		return estimates.Draft{}, ErrInvalidArgument
	}

	c, err := g.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return estimates.Draft{}, err
	}
	asset, ok, err := g.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return estimates.Draft{}, err
	}
	// Precondition check: rejected synchronously, no state transition.
	if !ok || !asset.HasTranscript() {
		return estimates.Draft{}, ErrTranscriptRequired
	}

	release, err := g.acquireSlot(ctx, companyID)
	if err != nil {
		return estimates.Draft{}, err
	}
	defer release()

	if err := g.enterAnalyzing(ctx, c); err != nil {
		return estimates.Draft{}, err
	}
	if _, err := g.pipeline.Advance(ctx, companyID, consultationID, consultations.PipelineGenerating); err != nil {
		return estimates.Draft{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.stageTimeout)
	defer cancel()

	result, err := g.client.GenerateEstimate(callCtx, EstimateRequest{
		Transcript:   asset.RawTranscript,
		CustomerName: c.CustomerName,
		ServiceHint:  c.Title,
	})
	if err != nil {
		return estimates.Draft{}, g.failStage(ctx, companyID, consultationID, asset.ID, err)
	}
	if err := result.Draft.Validate(); err != nil {
		return estimates.Draft{}, g.failStage(ctx, companyID, consultationID, asset.ID, err)
	}

	if err := g.repo.SetAssetAnalysis(ctx, companyID, asset.ID, result.Summary, result.ScopeNotes, result.PricingNotes); err != nil {
		return estimates.Draft{}, err
	}
	// The previous draft is replaced only now, after a full success.
	if err := g.repo.SetAssetDraft(ctx, companyID, asset.ID, result.Draft); err != nil {
		return estimates.Draft{}, err
	}
	if _, err := g.pipeline.Advance(ctx, companyID, consultationID, consultations.PipelineReady); err != nil {
		return estimates.Draft{}, err
	}

	g.log.Info("estimate generated",
		"consultation_id", consultationID,
		"line_items", len(result.Draft.LineItems),
		"total_minor", result.Draft.TotalMinor(),
	)
	return result.Draft, nil
}

// GeneratePage generates per-section page content. Independent of estimate
// generation: it does not drive the pipeline ladder, and each call produces a
// fresh output that replaces the stored one on success.
func (g *Generator) GeneratePage(ctx context.Context, companyID, consultationID, templateID string) (pages.AIContent, error) {
	if companyID == "" || consultationID == "" {
		return nil, ErrInvalidArgument
	}

	asset, ok, err := g.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return nil, err
	}
	if !ok || !asset.HasTranscript() {
		return nil, ErrTranscriptRequired
	}

	tmpl, err := g.pages.Template(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}
	sectionTypes := make([]string, 0, len(tmpl.Sections))
	seen := map[string]struct{}{}
	for _, s := range tmpl.Sections {
		if _, ok := seen[s.Type]; ok {
			continue
		}
		seen[s.Type] = struct{}{}
		sectionTypes = append(sectionTypes, s.Type)
	}

	release, err := g.acquireSlot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, g.stageTimeout)
	defer cancel()

	content, err := g.client.GeneratePageContent(callCtx, PageRequest{
		Transcript:   asset.RawTranscript,
		Summary:      asset.TranscriptSummary,
		SectionTypes: sectionTypes,
	})
	if err != nil {
		if setErr := g.repo.SetAssetError(ctx, companyID, asset.ID, err.Error()); setErr != nil {
			g.log.Warn("asset error write failed", "err", setErr)
		}
		return nil, err
	}

	if err := g.repo.SetAssetPageContent(ctx, companyID, asset.ID, content); err != nil {
		return nil, err
	}
	g.log.Info("page content generated", "consultation_id", consultationID, "sections", len(content))
	return content, nil
}

// enterAnalyzing moves the pipeline into the analyzing stage, rewinding via
// the explicit regenerate path when a previous pass already finished.
func (g *Generator) enterAnalyzing(ctx context.Context, c consultations.Consultation) error {
	switch c.PipelineStatus {
	case consultations.PipelineReady, consultations.PipelineError:
		_, err := g.pipeline.Regenerate(ctx, c.CompanyID, c.ID)
		return err
	default:
		_, err := g.pipeline.Advance(ctx, c.CompanyID, c.ID, consultations.PipelineAnalyzing)
		return err
	}
}

// failStage records the failure on both the asset and the pipeline status and
// returns the original error. Previously stored artifacts stay untouched.
func (g *Generator) failStage(ctx context.Context, companyID, consultationID, assetID string, cause error) error {
	if err := g.repo.SetAssetError(ctx, companyID, assetID, cause.Error()); err != nil {
		g.log.Warn("asset error write failed", "err", err)
	}
	if _, err := g.pipeline.Fail(ctx, companyID, consultationID, cause.Error()); err != nil {
		g.log.Warn("pipeline fail write failed", "err", err)
	}
	return cause
}

func (g *Generator) acquireSlot(ctx context.Context, companyID string) (func(), error) {
	if g.rdb == nil || g.capLimit <= 0 {
		return func() {}, nil
	}
	key := "aigen:cap:" + companyID
	ok, err := utils.AcquireConcurrencyCap(ctx, g.rdb, key, g.capLimit, 5*time.Minute)
	if err != nil {
		// The cap is protective, not load-bearing; redis trouble should not
		// block generation.
		g.log.Warn("generation cap acquire failed", "err", err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrGenerationBusy
	}
	return func() {
		if err := utils.ReleaseConcurrencyCap(context.WithoutCancel(ctx), g.rdb, key); err != nil {
			g.log.Warn("generation cap release failed", "err", err)
		}
	}, nil
}
