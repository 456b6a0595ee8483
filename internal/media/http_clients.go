package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrUpstream marks provider failures that are safe to retry by re-invoking
// the same stage; no provider-side effects persist beyond a fresh call.
var ErrUpstream = errors.New("media: upstream provider unavailable")

// VideoHostClient talks to the video hosting provider's REST API.
type VideoHostClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewVideoHostClient(baseURL, apiKey string, timeout time.Duration) *VideoHostClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &VideoHostClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *VideoHostClient) RecordingByRoom(ctx context.Context, roomRef string) (Recording, error) {
	if roomRef == "" {
		return Recording{}, errors.New("media: room ref is required")
	}

	endpoint := fmt.Sprintf("%s/v1/recordings?room=%s", c.BaseURL, url.QueryEscape(roomRef))

	var out struct {
		Recordings []struct {
			ID              string `json:"id"`
			DownloadURL     string `json:"download_url"`
			DurationSeconds int    `json:"duration_seconds"`
			Status          string `json:"status"`
		} `json:"recordings"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return Recording{}, err
	}

	for _, rec := range out.Recordings {
		if rec.Status == "finished" {
			return Recording{
				ExternalVideoID: rec.ID,
				URL:             rec.DownloadURL,
				DurationSeconds: rec.DurationSeconds,
			}, nil
		}
	}
	return Recording{}, fmt.Errorf("%w: no finished recording for room %s", ErrUpstream, roomRef)
}

func (c *VideoHostClient) getJSON(ctx context.Context, endpoint string, target any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("video host server error: %s", body)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("video host returned status %d", resp.StatusCode))
		}
		return json.Unmarshal(body, target)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// STTClient talks to the speech-to-text provider. The provider transcribes
// asynchronously; Transcribe submits the job and polls until subtitle text is
// available or ctx expires.
type STTClient struct {
	BaseURL      string
	APIKey       string
	HTTP         *http.Client
	PollInterval time.Duration
}

func NewSTTClient(baseURL, apiKey string, timeout time.Duration) *STTClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &STTClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		HTTP:         &http.Client{Timeout: timeout},
		PollInterval: 10 * time.Second,
	}
}

type sttJob struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"` // queued, processing, done, failed
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *STTClient) Transcribe(ctx context.Context, externalVideoID string) (string, error) {
	if externalVideoID == "" {
		return "", errors.New("media: external video id is required")
	}

	job, err := c.submit(ctx, externalVideoID)
	if err != nil {
		return "", err
	}
	if job.Status == "done" {
		return job.Text, nil
	}

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: transcription timed out: %v", ErrUpstream, ctx.Err())
		case <-ticker.C:
		}

		job, err = c.status(ctx, job.JobID)
		if err != nil {
			return "", err
		}
		switch job.Status {
		case "done":
			return job.Text, nil
		case "failed":
			return "", fmt.Errorf("%w: transcription failed: %s", ErrUpstream, job.Message)
		}
	}
}

func (c *STTClient) submit(ctx context.Context, externalVideoID string) (sttJob, error) {
	payload, err := json.Marshal(map[string]string{
		"video_id": externalVideoID,
		"format":   "vtt",
	})
	if err != nil {
		return sttJob{}, err
	}

	var job sttJob
	if err := c.doJSON(ctx, http.MethodPost, c.BaseURL+"/v1/transcriptions", payload, &job); err != nil {
		return sttJob{}, err
	}
	return job, nil
}

func (c *STTClient) status(ctx context.Context, jobID string) (sttJob, error) {
	var job sttJob
	err := c.doJSON(ctx, http.MethodGet, c.BaseURL+"/v1/transcriptions/"+url.PathEscape(jobID), nil, &job)
	return job, err
}

func (c *STTClient) doJSON(ctx context.Context, method, endpoint string, payload []byte, target any) error {
	operation := func() error {
		var body io.Reader
		if payload != nil {
			// Fresh reader per attempt so retries resend the full payload.
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("stt server error: %s", raw)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("stt returned status %d: %s", resp.StatusCode, raw))
		}
		return json.Unmarshal(raw, target)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
