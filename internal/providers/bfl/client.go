// Package bfl implements the submit/poll provider client for the Black
// Forest Labs FLUX API: one POST to create a job, then a bounded
// fixed-interval polling loop against the returned status endpoint.
package bfl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"venueadmin/internal/domain"
	"venueadmin/internal/providers/imageapi"
	"venueadmin/internal/providers/polling"
)

const providerName = "black-forest-labs"

// Options configures the FLUX client.
type Options struct {
	APIKey          string
	BaseURL         string
	HTTPClient      *http.Client
	Logger          *zerolog.Logger
	PollInterval    time.Duration
	MaxPollAttempts int
	Sleep           polling.SleepFunc
}

// Client performs HTTP calls against the FLUX generation and polling
// endpoints.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
	pollInterval time.Duration
	maxAttempts  int
	sleep        polling.SleepFunc
}

type generationRequest struct {
	Prompt          string                `json:"prompt"`
	Width           int                   `json:"width,omitempty"`
	Height          int                   `json:"height,omitempty"`
	AspectRatio     string                `json:"aspect_ratio,omitempty"`
	Seed            int                   `json:"seed,omitempty"`
	SafetyTolerance int                   `json:"safety_tolerance"`
	OutputFormat    string                `json:"output_format,omitempty"`
	Raw             bool                  `json:"raw,omitempty"`
	ImagePrompt     string                `json:"image_prompt,omitempty"`
	InputImage      string                `json:"input_image,omitempty"`
	Steps           int                   `json:"steps,omitempty"`
	Guidance        float64               `json:"guidance,omitempty"`
	LoRAs           []imageapi.LoRAWeight `json:"loras,omitempty"`
}

type submitResponse struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url"`
}

type pollResponse struct {
	Status string `json:"status"`
	Result struct {
		Sample string `json:"sample"`
	} `json:"result"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// NewClient constructs a FLUX client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.bfl.ai/v1"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	maxAttempts := opts.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: interval,
		maxAttempts:  maxAttempts,
		sleep:        opts.Sleep,
	}, nil
}

// Name identifies the provider in records and error envelopes.
func (c *Client) Name() string { return providerName }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.apiKey != "" }

// Generate submits the job, polls until a terminal status or the attempt
// cap, and returns the finished sample URL. A timed-out job is abandoned;
// there is no cancellation call to the provider.
func (c *Client) Generate(ctx context.Context, req imageapi.NormalizedRequest) (*imageapi.FinalAsset, error) {
	if !c.HasCredentials() {
		return nil, &domain.ConfigurationError{Msg: "black-forest-labs api key not configured"}
	}

	payload := generationRequest{
		Prompt:          req.Prompt,
		SafetyTolerance: req.SafetyLevel,
		OutputFormat:    req.OutputFormat,
		Raw:             req.Raw,
		Steps:           req.Steps,
		Guidance:        req.Guidance,
		Seed:            req.Seed,
		LoRAs:           req.LoRAs,
	}
	if req.AspectRatio != "" {
		payload.AspectRatio = req.AspectRatio
	} else {
		payload.Width, payload.Height = req.Width, req.Height
	}
	if req.UseReference && len(req.ReferenceData) > 0 {
		// The kontext tier names the conditioning image input_image; the
		// rest of the family takes image_prompt.
		encoded := base64.StdEncoding.EncodeToString(req.ReferenceData)
		if kontextModel(req.Model) {
			payload.InputImage = encoded
		} else {
			payload.ImagePrompt = encoded
		}
	}

	job, err := c.submit(ctx, modelPath(req.Model), payload)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", req.Model).
		Str("job_id", job.ID).
		Msg("bfl: job submitted")

	return c.poll(ctx, job)
}

func (c *Client) submit(ctx context.Context, model string, payload generationRequest) (*submitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("bfl: encode request: %w", err)
	}
	endpoint := c.baseURL + "/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bfl: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.SubmitError{Provider: providerName, Msg: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.SubmitError{Provider: providerName, Msg: fmt.Sprintf("read response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.SubmitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Msg:        providerMessage(raw),
		}
	}

	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.SubmitError{Provider: providerName, Msg: fmt.Sprintf("decode response: %v", err)}
	}
	if decoded.ID == "" || decoded.PollingURL == "" {
		return nil, &domain.SubmitError{Provider: providerName, Msg: "response missing job id or polling url"}
	}
	return &decoded, nil
}

func (c *Client) poll(ctx context.Context, job *submitResponse) (*imageapi.FinalAsset, error) {
	var sample string
	err := polling.Wait(ctx, polling.Config{
		Interval:    c.pollInterval,
		MaxAttempts: c.maxAttempts,
		Sleep:       c.sleep,
	}, func(ctx context.Context, attempt int) (bool, error) {
		status, err := c.pollOnce(ctx, job.PollingURL)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(status.Status)) {
		case "ready":
			if status.Result.Sample == "" {
				return false, &domain.ProviderError{Provider: providerName, Msg: "missing asset in ready response"}
			}
			sample = status.Result.Sample
			return true, nil
		case "error", "failed":
			return false, &domain.ProviderError{Provider: providerName, Msg: errorText(status)}
		default:
			// Unrecognized statuses keep the loop counting; the cap is on
			// attempts, not on status transitions.
			c.logger.Debug().
				Str("job_id", job.ID).
				Str("status", status.Status).
				Int("attempt", attempt).
				Msg("bfl: job not ready")
			return false, nil
		}
	})
	if err != nil {
		if errors.Is(err, polling.ErrExhausted) {
			return nil, &domain.TimeoutError{Provider: providerName, Attempts: c.maxAttempts}
		}
		return nil, err
	}
	return &imageapi.FinalAsset{URL: sample}, nil
}

func (c *Client) pollOnce(ctx context.Context, pollingURL string) (*pollResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pollingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bfl: build poll request: %w", err)
	}
	httpReq.Header.Set("x-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("poll request: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("read poll response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Provider: providerName,
			Msg:      fmt.Sprintf("poll status %d: %s", resp.StatusCode, providerMessage(raw)),
		}
	}
	var decoded pollResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("decode poll response: %v", err)}
	}
	return &decoded, nil
}

func kontextModel(model string) bool {
	return strings.Contains(modelPath(model), "kontext")
}

// modelPath strips the provider prefix from the catalog id, leaving the
// endpoint path segment ("black-forest-labs/flux-pro" -> "flux-pro").
func modelPath(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}

func errorText(status *pollResponse) string {
	if status.Error != "" {
		return status.Error
	}
	if status.Details != "" {
		return status.Details
	}
	return "generation failed"
}

func providerMessage(raw []byte) string {
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		switch {
		case detail.Detail != "":
			return detail.Detail
		case detail.Message != "":
			return detail.Message
		case detail.Error != "":
			return detail.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

var _ imageapi.Client = (*Client)(nil)
