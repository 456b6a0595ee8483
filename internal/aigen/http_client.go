package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"fieldservice-platform/internal/pages"
)

// HTTPClient calls an OpenAI-compatible chat completions endpoint and parses
// the structured JSON the prompts request.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) GenerateEstimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	content, err := c.complete(ctx, estimatePrompt(req))
	if err != nil {
		return EstimateResult{}, err
	}

	var parsed struct {
		LineItems []struct {
			Description    string  `json:"description"`
			Quantity       float64 `json:"quantity"`
			UnitPriceMinor int64   `json:"unit_price_minor"`
			Category       string  `json:"category"`
			CatalogRef     string  `json:"catalog_ref"`
			Taxable        bool    `json:"taxable"`
			UnitLabel      string  `json:"unit_label"`
		} `json:"line_items"`
		Resources struct {
			TruckCount      int     `json:"truck_count"`
			TeamSize        int     `json:"team_size"`
			EstimatedHours  float64 `json:"estimated_hours"`
			HourlyRateMinor int64   `json:"hourly_rate_minor"`
		} `json:"resources"`
		PricingModel  string `json:"pricing_model"`
		CustomerNotes string `json:"customer_notes"`
		InternalNotes string `json:"internal_notes"`
		ServiceType   string `json:"service_type"`
		Summary       string `json:"summary"`
		ScopeNotes    string `json:"scope_notes"`
		PricingNotes  string `json:"pricing_notes"`
	}
	if err := unmarshalModelJSON(content, &parsed); err != nil {
		return EstimateResult{}, fmt.Errorf("%w: unparsable estimate response: %v", ErrUpstream, err)
	}

	out := EstimateResult{
		Summary:      parsed.Summary,
		ScopeNotes:   parsed.ScopeNotes,
		PricingNotes: parsed.PricingNotes,
	}
	out.Draft.Pricing = parsePricingModel(parsed.PricingModel)
	out.Draft.CustomerNotes = parsed.CustomerNotes
	out.Draft.InternalNotes = parsed.InternalNotes
	out.Draft.ServiceType = parsed.ServiceType
	out.Draft.Resources.TruckCount = parsed.Resources.TruckCount
	out.Draft.Resources.TeamSize = parsed.Resources.TeamSize
	out.Draft.Resources.EstimatedHours = parsed.Resources.EstimatedHours
	out.Draft.Resources.HourlyRateMinor = parsed.Resources.HourlyRateMinor
	for _, li := range parsed.LineItems {
		out.Draft.LineItems = append(out.Draft.LineItems, newLineItem(
			li.Description, li.Quantity, li.UnitPriceMinor, li.Category, li.CatalogRef, li.Taxable, li.UnitLabel,
		))
	}
	return out, nil
}

func (c *HTTPClient) GeneratePageContent(ctx context.Context, req PageRequest) (pages.AIContent, error) {
	content, err := c.complete(ctx, pagePrompt(req))
	if err != nil {
		return nil, err
	}

	var parsed pages.AIContent
	if err := unmarshalModelJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparsable page response: %v", ErrUpstream, err)
	}
	return parsed, nil
}

// complete performs one chat completion with bounded retries on transient
// provider failures. 4xx responses are permanent; 5xx and transport errors
// retry until the backoff's elapsed-time cap.
func (c *HTTPClient) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	})
	if err != nil {
		return "", err
	}

	var content string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.APIKey)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("generation server error: %s", body)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("generation returned status %d: %s", resp.StatusCode, body))
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("generation decode error: %v", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("generation returned no choices")
		}
		content = parsed.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return content, nil
}

// unmarshalModelJSON extracts the outermost JSON object from model output,
// tolerating prose or code fences around it.
func unmarshalModelJSON(content string, target any) error {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	return json.Unmarshal([]byte(content[start:end+1]), target)
}
