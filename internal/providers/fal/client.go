// Package fal implements the subscribe provider client for the fal.ai queue:
// a single blocking call that submits the request, waits internally for
// completion while surfacing queue updates to an optional progress callback,
// and always returns the finished asset as a fetchable URL.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
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

const providerName = "fal"

// QueueUpdate is one intermediate observation of a queued job. It feeds
// logging only; completion is driven by the status field internally.
type QueueUpdate struct {
	Status   string
	Position int
	Logs     []string
}

// ProgressFunc receives queue updates while Subscribe waits.
type ProgressFunc func(QueueUpdate)

// Options configures the fal queue client.
type Options struct {
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *zerolog.Logger
	PollInterval time.Duration
	Sleep        polling.SleepFunc
}

// Client performs HTTP calls against the fal queue endpoints.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
	pollInterval time.Duration
	sleep        polling.SleepFunc
}

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generationRequest struct {
	Prompt            string                `json:"prompt"`
	NumInferenceSteps int                   `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64               `json:"guidance_scale,omitempty"`
	NumImages         int                   `json:"num_images"`
	ImageSize         *imageSize            `json:"image_size,omitempty"`
	AspectRatio       string                `json:"aspect_ratio,omitempty"`
	LoRAs             []imageapi.LoRAWeight `json:"loras,omitempty"`
	ImageURL          string                `json:"image_url,omitempty"`
	Strength          float64               `json:"strength,omitempty"`
}

type queueEnvelope struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type queueStatus struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	Logs          []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

type queueResult struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Detail string `json:"detail"`
}

// NewClient constructs a fal client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://queue.fal.run"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
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
		sleep:        opts.Sleep,
	}, nil
}

// Name identifies the provider in records and error envelopes.
func (c *Client) Name() string { return providerName }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.apiKey != "" }

// Generate satisfies the shared client contract; queue updates are logged.
func (c *Client) Generate(ctx context.Context, req imageapi.NormalizedRequest) (*imageapi.FinalAsset, error) {
	return c.Subscribe(ctx, req, func(update QueueUpdate) {
		c.logger.Debug().
			Str("status", update.Status).
			Int("queue_position", update.Position).
			Strs("logs", update.Logs).
			Msg("fal: queue update")
	})
}

// Subscribe submits the request and blocks until the queue reports
// completion, then fetches the result. There is no attempt cap here; the
// wait is bounded only by the context and the transport's own timeout.
func (c *Client) Subscribe(ctx context.Context, req imageapi.NormalizedRequest, onProgress ProgressFunc) (*imageapi.FinalAsset, error) {
	if !c.HasCredentials() {
		return nil, &domain.ConfigurationError{Msg: "fal api key not configured"}
	}

	payload := generationRequest{
		Prompt:            req.Prompt,
		NumInferenceSteps: req.Steps,
		GuidanceScale:     req.Guidance,
		NumImages:         1,
		LoRAs:             filterLoRAs(req.LoRAs),
	}
	if req.AspectRatio != "" {
		payload.AspectRatio = req.AspectRatio
	} else if req.Width > 0 && req.Height > 0 {
		payload.ImageSize = &imageSize{Width: req.Width, Height: req.Height}
	}
	if req.UseReference && req.ReferenceURL != "" {
		payload.ImageURL = req.ReferenceURL
		payload.Strength = req.ReferenceStrength
	}

	job, err := c.submit(ctx, req.Model, payload)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", req.Model).
		Str("request_id", job.RequestID).
		Msg("fal: request queued")

	if err := c.waitForCompletion(ctx, job, onProgress); err != nil {
		return nil, err
	}
	return c.fetchResult(ctx, job)
}

func (c *Client) submit(ctx context.Context, model string, payload generationRequest) (*queueEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: encode request: %w", err)
	}
	endpoint := c.baseURL + "/" + strings.TrimPrefix(model, "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

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
			Msg:        strings.TrimSpace(string(raw)),
		}
	}
	var decoded queueEnvelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.SubmitError{Provider: providerName, Msg: fmt.Sprintf("decode response: %v", err)}
	}
	if decoded.StatusURL == "" || decoded.ResponseURL == "" {
		return nil, &domain.SubmitError{Provider: providerName, Msg: "queue response missing status or response url"}
	}
	return &decoded, nil
}

func (c *Client) waitForCompletion(ctx context.Context, job *queueEnvelope, onProgress ProgressFunc) error {
	sleep := c.sleep
	if sleep == nil {
		sleep = polling.Sleep
	}
	for {
		status, err := c.fetchStatus(ctx, job.StatusURL)
		if err != nil {
			return err
		}
		if onProgress != nil {
			update := QueueUpdate{Status: status.Status, Position: status.QueuePosition}
			for _, l := range status.Logs {
				update.Logs = append(update.Logs, l.Message)
			}
			onProgress(update)
		}
		switch strings.ToUpper(strings.TrimSpace(status.Status)) {
		case "COMPLETED":
			return nil
		case "FAILED", "ERROR":
			return &domain.ProviderError{Provider: providerName, Msg: "generation failed in queue"}
		}
		if err := sleep(ctx, c.pollInterval); err != nil {
			return err
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, statusURL string) (*queueStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL+"?logs=1", nil)
	if err != nil {
		return nil, fmt.Errorf("fal: build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("status request: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("read status: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Provider: providerName,
			Msg:      fmt.Sprintf("status check %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}
	var decoded queueStatus
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("decode status: %v", err)}
	}
	return &decoded, nil
}

func (c *Client) fetchResult(ctx context.Context, job *queueEnvelope) (*imageapi.FinalAsset, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, job.ResponseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fal: build result request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("result request: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("read result: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Provider: providerName,
			Msg:      fmt.Sprintf("result fetch %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}
	var decoded queueResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("decode result: %v", err)}
	}
	if len(decoded.Images) == 0 || decoded.Images[0].URL == "" {
		return nil, &domain.ProviderError{Provider: providerName, Msg: "no images in completed response"}
	}
	return &imageapi.FinalAsset{URL: decoded.Images[0].URL}, nil
}

// filterLoRAs drops style-adapter entries with an empty path. An empty result
// is equivalent to omitting the list entirely.
func filterLoRAs(loras []imageapi.LoRAWeight) []imageapi.LoRAWeight {
	var out []imageapi.LoRAWeight
	for _, lw := range loras {
		if strings.TrimSpace(lw.Path) == "" {
			continue
		}
		out = append(out, lw)
	}
	return out
}

var _ imageapi.Client = (*Client)(nil)
