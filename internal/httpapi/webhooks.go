package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"fieldservice-platform/internal/ingest"
	"fieldservice-platform/internal/media"

	"github.com/gin-gonic/gin"
)

const webhookSecretHeader = "X-Webhook-Secret"

// WebhookHandlers serves the video host's recording-lifecycle callbacks.
// These are public endpoints authenticated by a shared secret header; the
// tenant comes from the webhook payload registered at room creation.
type WebhookHandlers struct {
	Ingest *ingest.Service
	Secret string
}

type recordingEvent struct {
	CompanyID      string `json:"company_id"`
	ConsultationID string `json:"consultation_id"`
}

// RecordingReady handles the "recording finished" event.
func (h WebhookHandlers) RecordingReady(c *gin.Context) {
	ev, ok := h.authenticate(c)
	if !ok {
		return
	}
	st, err := h.Ingest.RecordingReady(c.Request.Context(), ev.CompanyID, ev.ConsultationID)
	if err != nil {
		abortWebhookError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st.Status})
}

// RecordingUploaded handles the "upload complete" event and runs the upload
// and transcription stages synchronously.
func (h WebhookHandlers) RecordingUploaded(c *gin.Context) {
	ev, ok := h.authenticate(c)
	if !ok {
		return
	}
	st, err := h.Ingest.RecordingUploaded(c.Request.Context(), ev.CompanyID, ev.ConsultationID)
	if err != nil {
		abortWebhookError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st.Status})
}

func (h WebhookHandlers) authenticate(c *gin.Context) (recordingEvent, bool) {
	if h.Secret != "" {
		got := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return recordingEvent{}, false
		}
	}

	var ev recordingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return recordingEvent{}, false
	}
	if ev.CompanyID == "" || ev.ConsultationID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "company_id and consultation_id required"})
		return recordingEvent{}, false
	}
	return ev, true
}

// abortWebhookError keeps provider retries sensible: stage failures that are
// already recorded on the pipeline return 200 so the provider does not
// re-deliver; the reviewer re-runs the stage through the transcription retry
// endpoint instead. Everything else maps as usual.
func abortWebhookError(c *gin.Context, err error) {
	if errors.Is(err, media.ErrUpstream) {
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}
	abortWithError(c, err)
}
