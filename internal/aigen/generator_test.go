package aigen

import (
	"context"
	"errors"
	"testing"

	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/internal/pipeline"
)

type fakeClient struct {
	estimateCalls int
	pageCalls     int

	estimateResult EstimateResult
	estimateErr    error
	pageContent    pages.AIContent
	pageErr        error
}

func (f *fakeClient) GenerateEstimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	f.estimateCalls++
	if f.estimateErr != nil {
		return EstimateResult{}, f.estimateErr
	}
	return f.estimateResult, nil
}

func (f *fakeClient) GeneratePageContent(ctx context.Context, req PageRequest) (pages.AIContent, error) {
	f.pageCalls++
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.pageContent, nil
}

func goodEstimateResult() EstimateResult {
	return EstimateResult{
		Draft: estimates.Draft{
			LineItems: []estimates.LineItem{
				{Description: "Water heater replacement", Quantity: 1, UnitPriceMinor: 185000},
			},
			Pricing:     estimates.PricingFlat,
			ServiceType: "plumbing",
		},
		Summary:      "Customer needs the failed water heater replaced.",
		ScopeNotes:   "40 gallon tank, garage install.",
		PricingNotes: "Flat rate includes haul-away.",
	}
}

type genFixture struct {
	repo   *consultations.MemoryRepo
	pages  *pages.MemoryStore
	client *fakeClient
	gen    *Generator
}

func newGenFixture(t *testing.T, client *fakeClient) *genFixture {
	t.Helper()
	repo := consultations.NewMemoryRepo()
	pgStore := pages.NewMemoryStore()
	pl := pipeline.NewService(repo, nil, nil)
	gen := NewGenerator(repo, pl, pages.NewService(pgStore), client, nil, GeneratorConfig{}, nil)
	return &genFixture{repo: repo, pages: pgStore, client: client, gen: gen}
}

func (f *genFixture) seed(t *testing.T, status consultations.PipelineStatus, raw string) {
	t.Helper()
	c := consultations.Consultation{
		ID:             "cons-1",
		CompanyID:      "co-1",
		Title:          "Water heater swap",
		CustomerName:   "Dana",
		CallStatus:     consultations.CallStatusEnded,
		PipelineStatus: status,
	}
	if err := f.repo.CreateConsultation(context.Background(), c); err != nil {
		t.Fatalf("seed consultation: %v", err)
	}
	a := consultations.VideoCallAsset{
		ID:             "asset-1",
		CompanyID:      "co-1",
		ConsultationID: "cons-1",
		RawTranscript:  raw,
	}
	if err := f.repo.CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
}

const rawVTT = "00:01.000 --> 00:05.000\nDana: the water heater died last night"

func TestGenerateEstimateHappyPath(t *testing.T) {
	client := &fakeClient{estimateResult: goodEstimateResult()}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)

	draft, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(draft.LineItems) != 1 {
		t.Fatalf("draft line items = %d, want 1", len(draft.LineItems))
	}

	c, _ := f.repo.GetConsultation(context.Background(), "co-1", "cons-1")
	if c.PipelineStatus != consultations.PipelineReady {
		t.Fatalf("status = %s, want ready", c.PipelineStatus)
	}
	asset, _, _ := f.repo.AssetByConsultation(context.Background(), "co-1", "cons-1")
	if !asset.HasEstimate() {
		t.Fatal("draft not stored on asset")
	}
	if asset.TranscriptSummary == "" || asset.ScopeNotes == "" {
		t.Fatalf("analysis fields not stored: %+v", asset)
	}
}

func TestGenerateEstimateRequiresTranscript(t *testing.T) {
	client := &fakeClient{estimateResult: goodEstimateResult()}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineUploading, "")

	_, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1")
	if !errors.Is(err, ErrTranscriptRequired) {
		t.Fatalf("err = %v, want ErrTranscriptRequired", err)
	}
	if client.estimateCalls != 0 {
		t.Fatal("provider called without a transcript")
	}
	// Precondition rejections never transition the pipeline.
	c, _ := f.repo.GetConsultation(context.Background(), "co-1", "cons-1")
	if c.PipelineStatus != consultations.PipelineUploading {
		t.Fatalf("status changed to %s", c.PipelineStatus)
	}
}

func TestGenerateEstimateFailureKeepsPreviousDraft(t *testing.T) {
	client := &fakeClient{estimateResult: goodEstimateResult()}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)

	if _, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1"); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	client.estimateErr = ErrUpstream
	_, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}

	c, _ := f.repo.GetConsultation(context.Background(), "co-1", "cons-1")
	if c.PipelineStatus != consultations.PipelineError {
		t.Fatalf("status = %s, want error", c.PipelineStatus)
	}
	asset, _, _ := f.repo.AssetByConsultation(context.Background(), "co-1", "cons-1")
	if !asset.HasEstimate() {
		t.Fatal("previous draft was cleared by the failed pass")
	}
	if asset.ProcessingError == "" {
		t.Fatal("failure not recorded on asset")
	}
}

func TestGenerateEstimateRejectsInvalidProviderOutput(t *testing.T) {
	bad := goodEstimateResult()
	bad.Draft.LineItems[0].Quantity = -2
	client := &fakeClient{estimateResult: bad}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)

	_, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1")
	if !errors.Is(err, estimates.ErrNegativeQuantity) {
		t.Fatalf("err = %v, want ErrNegativeQuantity", err)
	}
	asset, _, _ := f.repo.AssetByConsultation(context.Background(), "co-1", "cons-1")
	if asset.HasEstimate() {
		t.Fatal("invalid draft was stored")
	}
}

func TestGenerateEstimateRegenerateFromReady(t *testing.T) {
	client := &fakeClient{estimateResult: goodEstimateResult()}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)

	if _, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1"); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	// Second pass from ready is the explicit regenerate rewind.
	if _, err := f.gen.GenerateEstimate(context.Background(), "co-1", "cons-1"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if client.estimateCalls != 2 {
		t.Fatalf("provider calls = %d, want 2", client.estimateCalls)
	}
	c, _ := f.repo.GetConsultation(context.Background(), "co-1", "cons-1")
	if c.PipelineStatus != consultations.PipelineReady {
		t.Fatalf("status = %s, want ready", c.PipelineStatus)
	}
}

func TestGeneratePageStoresContentWithoutDrivingPipeline(t *testing.T) {
	client := &fakeClient{
		pageContent: pages.AIContent{
			"hero":  {"headline": "Same-day water heater replacement"},
			"scope": {"body": "Replace the failed 40 gallon tank."},
		},
	}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)
	f.pages.PutTemplate(pages.Template{
		ID:        "tmpl-1",
		CompanyID: "co-1",
		Name:      "Proposal",
		Sections: []pages.Section{
			{ID: "s1", Type: "hero", Visible: true},
			{ID: "s2", Type: "scope", Visible: true},
			{ID: "s3", Type: "hero", Visible: true},
		},
	})

	content, err := f.gen.GeneratePage(context.Background(), "co-1", "cons-1", "")
	if err != nil {
		t.Fatalf("generate page: %v", err)
	}
	if len(content) != 2 {
		t.Fatalf("content sections = %d, want 2", len(content))
	}

	asset, _, _ := f.repo.AssetByConsultation(context.Background(), "co-1", "cons-1")
	if !asset.HasPage() {
		t.Fatal("page content not stored")
	}
	c, _ := f.repo.GetConsultation(context.Background(), "co-1", "cons-1")
	if c.PipelineStatus != consultations.PipelineTranscribing {
		t.Fatalf("page generation moved the pipeline to %s", c.PipelineStatus)
	}
}

func TestGeneratePageFailureKeepsPreviousContent(t *testing.T) {
	client := &fakeClient{pageContent: pages.AIContent{"hero": {"headline": "v1"}}}
	f := newGenFixture(t, client)
	f.seed(t, consultations.PipelineTranscribing, rawVTT)
	f.pages.PutTemplate(pages.Template{
		ID:        "tmpl-1",
		CompanyID: "co-1",
		Name:      "Proposal",
		Sections:  []pages.Section{{ID: "s1", Type: "hero", Visible: true}},
	})

	if _, err := f.gen.GeneratePage(context.Background(), "co-1", "cons-1", ""); err != nil {
		t.Fatalf("first page pass: %v", err)
	}
	client.pageErr = ErrUpstream
	if _, err := f.gen.GeneratePage(context.Background(), "co-1", "cons-1", ""); !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}

	asset, _, _ := f.repo.AssetByConsultation(context.Background(), "co-1", "cons-1")
	if asset.PageContent["hero"]["headline"] != "v1" {
		t.Fatalf("previous content lost: %+v", asset.PageContent)
	}
}
