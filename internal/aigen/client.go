// Package aigen invokes the external generative content provider and
// orchestrates estimate/page generation for a consultation. The generation
// model itself is out of scope; this package owns prompting, response
// parsing, state advancement, and safe storage of results.
package aigen

import (
	"context"
	"errors"

	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/pages"
)

// ErrUpstream marks provider failures that are safe to retry by re-invoking
// the same generation stage.
var ErrUpstream = errors.New("aigen: generation provider unavailable")

// EstimateRequest carries the context the provider needs to draft an estimate.
type EstimateRequest struct {
	Transcript   string
	CompanyName  string
	CustomerName string
	ServiceHint  string
}

// EstimateResult is the structured generation output for one pass: the
// reviewable draft plus the analysis scratch fields kept for reviewer context.
type EstimateResult struct {
	Draft        estimates.Draft
	Summary      string
	ScopeNotes   string
	PricingNotes string
}

// PageRequest carries the context for per-section page content generation.
type PageRequest struct {
	Transcript   string
	Summary      string
	CompanyName  string
	SectionTypes []string
}

// Client is the generative content provider boundary.
type Client interface {
	GenerateEstimate(ctx context.Context, req EstimateRequest) (EstimateResult, error)
	GeneratePageContent(ctx context.Context, req PageRequest) (pages.AIContent, error)
}
