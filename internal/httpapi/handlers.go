package httpapi

import (
	"errors"
	"net/http"
	"time"

	"fieldservice-platform/internal/aigen"
	"fieldservice-platform/internal/auth"
	"fieldservice-platform/internal/consultations"
	"fieldservice-platform/internal/estimates"
	"fieldservice-platform/internal/ingest"
	"fieldservice-platform/internal/media"
	"fieldservice-platform/internal/pages"
	"fieldservice-platform/internal/pipeline"
	"fieldservice-platform/internal/rbac"
	"fieldservice-platform/internal/reporting"
	"fieldservice-platform/internal/review"
	"fieldservice-platform/internal/templating"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Pipeline  *pipeline.Service
	Ingest    *ingest.Service
	Generator *aigen.Generator
	Review    *review.Service
	Reports   *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.CompanyID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, company_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.CompanyID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Pipeline ---

// GetPipeline returns the pipeline projection for a consultation. Poll-safe.
func (h Handlers) GetPipeline(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	st, err := h.Pipeline.Get(c.Request.Context(), companyID, consultationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetTranscript returns the normalized transcript view for a consultation.
func (h Handlers) GetTranscript(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	view, err := h.Pipeline.Transcript(c.Request.Context(), companyID, consultationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RetryTranscription re-runs the upload and transcription stages after a
// failure. The webhook path does not re-deliver on stage errors, so this is
// the reviewer's way out of an error state that predates the transcript.
func (h Handlers) RetryTranscription(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	st, err := h.Ingest.RetryTranscription(c.Request.Context(), companyID, consultationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// --- Generation ---

// GenerateEstimate runs one synchronous estimate generation pass.
func (h Handlers) GenerateEstimate(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	draft, err := h.Generator.GenerateEstimate(c.Request.Context(), companyID, consultationID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type generatePageRequest struct {
	TemplateID string `json:"template_id"`
}

// GeneratePage generates per-section page content for the consultation.
func (h Handlers) GeneratePage(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	var req generatePageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	content, err := h.Generator.GeneratePage(c.Request.Context(), companyID, consultationID, req.TemplateID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// --- Accept ---

// Accept commits the reviewed draft (plus overrides) into durable records.
func (h Handlers) Accept(c *gin.Context) {
	companyID, consultationID, ok := tenantAndID(c)
	if !ok {
		return
	}
	var ov review.Overrides
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&ov); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	userID, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())

	res, err := h.Review.Accept(c.Request.Context(), companyID, consultationID, ov, review.Actor{UserID: userID, Role: role})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Block preview ---

type previewRequest struct {
	HTML   string            `json:"html"`
	CSS    string            `json:"css"`
	Values map[string]string `json:"values,omitempty"`
}

// PreviewBlock renders a block's markup with the supplied values, filling any
// remaining placeholders with deterministic sample values.
func (h Handlers) PreviewBlock(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.HTML == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "html required"})
		return
	}

	values := templating.SampleValues(templating.ExtractVariables(req.HTML + req.CSS))
	for k, v := range req.Values {
		values[k] = v
	}
	c.JSON(http.StatusOK, templating.RegenerateContent(req.HTML, req.CSS, values))
}

// --- Reporting ---

// PipelineReport aggregates consultation pipeline metrics for the company.
func (h Handlers) PipelineReport(c *gin.Context) {
	companyID, err := auth.CompanyID(c.Request.Context())
	if err != nil || companyID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "company_id required"})
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	out, err := h.Reports.PipelineSummary(c.Request.Context(), reporting.PipelineSummaryRequest{
		CompanyID: companyID,
		Range:     rng,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// EstimatesReport aggregates committed estimate metrics for the company.
func (h Handlers) EstimatesReport(c *gin.Context) {
	companyID, err := auth.CompanyID(c.Request.Context())
	if err != nil || companyID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "company_id required"})
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	out, err := h.Reports.EstimatesSummary(c.Request.Context(), reporting.EstimatesSummaryRequest{
		CompanyID:   companyID,
		Range:       rng,
		ServiceType: c.Query("service_type"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// parseRange reads the from/to query params (RFC 3339), defaulting to the
// last 30 days. Writes the error response itself on a malformed timestamp.
func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	now := time.Now().UTC()
	rng := reporting.TimeRange{From: now.AddDate(0, 0, -30), To: now}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
			return reporting.TimeRange{}, false
		}
		rng.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
			return reporting.TimeRange{}, false
		}
		rng.To = t
	}
	return rng, true
}

// tenantAndID pulls the tenant from the verified token and the consultation
// id from the path. Writes the error response itself when either is missing.
func tenantAndID(c *gin.Context) (companyID, consultationID string, ok bool) {
	companyID, err := auth.CompanyID(c.Request.Context())
	if err != nil || companyID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "company_id required"})
		return "", "", false
	}
	consultationID = c.Param("id")
	if consultationID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "consultation id required"})
		return "", "", false
	}
	return companyID, consultationID, true
}

// abortWithError maps service errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, consultations.ErrNotFound),
		errors.Is(err, consultations.ErrAssetNotFound),
		errors.Is(err, estimates.ErrNotFound),
		errors.Is(err, pages.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, aigen.ErrGenerationBusy):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, aigen.ErrTranscriptRequired),
		errors.Is(err, pipeline.ErrNoTranscript),
		errors.Is(err, pipeline.ErrIllegalTransition),
		errors.Is(err, review.ErrNoEstimate):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, estimates.ErrNegativeQuantity),
		errors.Is(err, estimates.ErrNegativePrice),
		errors.Is(err, pipeline.ErrInvalidArgument),
		errors.Is(err, aigen.ErrInvalidArgument),
		errors.Is(err, review.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, ingest.ErrInvalidArgument),
		errors.Is(err, estimates.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, aigen.ErrUpstream), errors.Is(err, media.ErrUpstream):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Convenience middleware bundles.

func RequireCompanyAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireCompany(), rbac.RequireAnyRole(roles...)}
}
