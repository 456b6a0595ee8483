package review

import (
	"context"
	"errors"
	"log/slog"

	"fieldservice-platform/internal/audit"
	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/internal/pipeline"
	"fieldservice-platform/internal/pricing"
)

var (
	ErrInvalidArgument = errors.New("review: invalid argument")

	// ErrNoEstimate means there is nothing to commit: no generated draft is
	// stored and the accept request carried no replacement content.
	ErrNoEstimate = errors.New("review: no estimate draft to accept")
)

// Overrides carries reviewer edits applied on top of the stored draft at
// accept time. Nil pointer fields leave the generated value in place; a
// non-nil pointer replaces it, including with an empty value.
type Overrides struct {
	Title         *string               `json:"title,omitempty"`
	ServiceType   *string               `json:"service_type,omitempty"`
	Pricing       *string               `json:"pricing_model,omitempty"`
	LineItems     *[]estimates.LineItem `json:"line_items,omitempty"`
	Resources     *estimates.Resources  `json:"resources,omitempty"`
	CustomerNotes *string               `json:"customer_notes,omitempty"`
	InternalNotes *string               `json:"internal_notes,omitempty"`

	// TemplateID selects the page template for the committed page. Empty
	// keeps the company default.
	TemplateID *string `json:"template_id,omitempty"`
}

// Result reports what an accept committed. Reused is true when the
// consultation already had a linked estimate and no new records were written.
type Result struct {
	EstimateID string `json:"estimate_id"`
	PageID     string `json:"page_id,omitempty"`
	Reused     bool   `json:"reused"`
}

// Actor identifies who performed the accept, for the audit trail.
type Actor struct {
	UserID string
	Role   string
}

// Service commits reviewed generation output into durable records.
//
// Accept is idempotent per consultation: the first accept wins, every later
// accept (including a concurrent one) observes the already-linked records.
type Service struct {
	repo     consultations.Repository
	pipeline *pipeline.Service
	ests     *estimates.Service
	estStore estimates.Store
	pgs      *pages.Service

	// catalog is optional; when set, catalog-referenced lines with no price
	// are filled from the company price book at accept time.
	catalog *pricing.Service

	audit *audit.Service
	log   *slog.Logger
}

func NewService(repo consultations.Repository, pl *pipeline.Service, ests *estimates.Service, estStore estimates.Store, pgs *pages.Service, catalog *pricing.Service, aud *audit.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		pipeline: pl,
		ests:     ests,
		estStore: estStore,
		pgs:      pgs,
		catalog:  catalog,
		audit:    aud,
		log:      log,
	}
}

// Accept turns the stored draft (plus reviewer overrides) into a committed
// estimate, and a committed page when page content was generated. The accept
// reads the latest stored draft; a regeneration still in flight does not
// change what gets committed.
func (s *Service) Accept(ctx context.Context, companyID, consultationID string, ov Overrides, actor Actor) (Result, error) {
	if companyID == "" || consultationID == "" {
		return Result{}, ErrInvalidArgument
	}

	c, err := s.repo.GetConsultation(ctx, companyID, consultationID)
	if err != nil {
		return Result{}, err
	}
	if c.EstimateID != "" {
		return Result{EstimateID: c.EstimateID, PageID: c.PageID, Reused: true}, nil
	}

	asset, ok, err := s.repo.AssetByConsultation(ctx, companyID, consultationID)
	if err != nil {
		return Result{}, err
	}

	draft, err := resolveDraft(asset, ok, ov)
	if err != nil {
		return Result{}, err
	}

	s.applyCatalogPrices(ctx, companyID, &draft)

	title := c.Title
	if ov.Title != nil {
		title = *ov.Title
	}
	est, err := s.ests.CreateFromDraft(ctx, companyID, consultationID, c.CustomerID, title, draft)
	if err != nil {
		return Result{}, err
	}

	linkedID, claimed, err := s.repo.ClaimEstimate(ctx, companyID, consultationID, est.ID)
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		// Lost the race: another accept linked first. Discard the estimate
		// this call created and report the winner's records.
		if delErr := s.estStore.Delete(ctx, companyID, est.ID); delErr != nil {
			s.log.Warn("orphaned estimate cleanup failed", "estimate_id", est.ID, "err", delErr)
		}
		winner, err := s.repo.GetConsultation(ctx, companyID, consultationID)
		if err != nil {
			return Result{}, err
		}
		return Result{EstimateID: linkedID, PageID: winner.PageID, Reused: true}, nil
	}

	res := Result{EstimateID: est.ID}

	if ok && asset.HasPage() {
		templateID := ""
		if ov.TemplateID != nil {
			templateID = *ov.TemplateID
		}
		page, err := s.pgs.CreateFromTemplate(ctx, companyID, consultationID, templateID, title, asset.PageContent)
		if err != nil {
			// The estimate is already linked; a page failure does not undo
			// the accept. The reviewer can re-issue the page separately.
			s.log.Error("page commit failed", "consultation_id", consultationID, "err", err)
		} else {
			if err := s.repo.SetPage(ctx, companyID, consultationID, page.ID); err != nil {
				s.log.Error("page link failed", "consultation_id", consultationID, "page_id", page.ID, "err", err)
			} else {
				res.PageID = page.ID
			}
		}
	}

	s.pipeline.Invalidate(ctx, companyID, consultationID)

	if s.audit != nil {
		if err := s.audit.LogAccept(ctx, companyID, actor.UserID, actor.Role, consultationID, res.EstimateID, res.PageID); err != nil {
			s.log.Warn("audit append failed", "consultation_id", consultationID, "err", err)
		}
	}

	s.log.Info("accept committed",
		"consultation_id", consultationID,
		"estimate_id", res.EstimateID,
		"page_id", res.PageID,
	)
	return res, nil
}

// applyCatalogPrices fills unit prices from the company price book for lines
// that reference a catalog entry but carry no price of their own. A ref with
// no effective catalog entry leaves the line unchanged.
func (s *Service) applyCatalogPrices(ctx context.Context, companyID string, d *estimates.Draft) {
	if s.catalog == nil {
		return
	}
	for i, li := range d.LineItems {
		if li.CatalogRef == "" || li.UnitPriceMinor != 0 {
			continue
		}
		q, err := s.catalog.QuoteItem(ctx, pricing.QuoteRequest{
			CompanyID:  companyID,
			CatalogRef: li.CatalogRef,
			Quantity:   li.Quantity,
		})
		if err != nil {
			if !errors.Is(err, pricing.ErrItemNotFound) {
				s.log.Warn("catalog lookup failed", "ref", li.CatalogRef, "err", err)
			}
			continue
		}
		d.LineItems[i].UnitPriceMinor = q.UnitPriceMinor
		if d.LineItems[i].Description == "" {
			d.LineItems[i].Description = q.Name
		}
	}
}

// resolveDraft merges reviewer overrides onto the stored generation output.
// With no stored draft, the overrides must amount to a complete draft on
// their own, which in practice means reviewer-supplied line items.
func resolveDraft(asset consultations.VideoCallAsset, hasAsset bool, ov Overrides) (estimates.Draft, error) {
	var d estimates.Draft
	switch {
	case hasAsset && asset.EstimateDraft != nil:
		d = *asset.EstimateDraft
		d.LineItems = append([]estimates.LineItem(nil), d.LineItems...)
	case ov.LineItems != nil:
		// Reviewer-authored estimate with no generated draft behind it.
	default:
		return estimates.Draft{}, ErrNoEstimate
	}

	if ov.LineItems != nil {
		d.LineItems = append([]estimates.LineItem(nil), (*ov.LineItems)...)
	}
	if ov.Resources != nil {
		d.Resources = *ov.Resources
	}
	if ov.Pricing != nil {
		d.Pricing = estimates.PricingModel(*ov.Pricing)
	}
	if ov.ServiceType != nil {
		d.ServiceType = *ov.ServiceType
	}
	if ov.CustomerNotes != nil {
		d.CustomerNotes = *ov.CustomerNotes
	}
	if ov.InternalNotes != nil {
		d.InternalNotes = *ov.InternalNotes
	}
	return d, nil
}
