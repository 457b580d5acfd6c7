// Package openaiimg implements the synchronous provider client: one Images
// API round trip whose response carries the final asset, either as a URL or
// as inline base64. When a reference image is supplied and the model supports
// edit-style generation, the call switches from generate to edit semantics
// with the reference bytes attached as a file part.
package openaiimg

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"venueadmin/internal/domain"
	"venueadmin/internal/providers/imageapi"
)

const providerName = "openai"

// Options configures the synchronous client. BaseURL may point at a gateway
// that fronts additional image models behind the same API shape.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client wraps the OpenAI SDK's Images service.
type Client struct {
	client *openai.Client
	apiKey string
	logger zerolog.Logger
}

// NewClient constructs a synchronous client.
func NewClient(opts Options) (*Client, error) {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	client := openai.NewClient(reqOpts...)
	return &Client{client: &client, apiKey: strings.TrimSpace(opts.APIKey), logger: logger}, nil
}

// Name identifies the provider in records and error envelopes.
func (c *Client) Name() string { return providerName }

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool { return c.apiKey != "" }

// Generate performs one synchronous generation or edit call.
func (c *Client) Generate(ctx context.Context, req imageapi.NormalizedRequest) (*imageapi.FinalAsset, error) {
	if !c.HasCredentials() {
		return nil, &domain.ConfigurationError{Msg: "openai api key not configured"}
	}
	if req.UseReference && len(req.ReferenceData) > 0 {
		return c.edit(ctx, req)
	}
	return c.generate(ctx, req)
}

func (c *Client) generate(ctx context.Context, req imageapi.NormalizedRequest) (*imageapi.FinalAsset, error) {
	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(req.Model),
		Prompt: req.Prompt,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(sizeToken(req)),
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(qualityValue(req.Model, req.Quality))
	}
	if req.Style != "" {
		params.Style = openai.ImageGenerateParamsStyle(req.Style)
	}
	if req.Background != "" {
		params.Background = openai.ImageGenerateParamsBackground(req.Background)
	}
	// gpt-image-1 always answers with inline base64 and rejects the
	// response_format parameter; URL mode is for the dall-e family and
	// gateway models that mimic it.
	if req.Model != "gpt-image-1" {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatURL
	}

	c.logger.Debug().Str("model", req.Model).Msg("openai: generating image")
	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return assetFromResponse(resp)
}

func (c *Client) edit(ctx context.Context, req imageapi.NormalizedRequest) (*imageapi.FinalAsset, error) {
	params := openai.ImageEditParams{
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(req.ReferenceData), "reference.png", "image/png"),
		},
		Model:  openai.ImageModel(req.Model),
		Prompt: req.Prompt,
		N:      openai.Int(1),
	}
	if token := sizeToken(req); token != "" {
		params.Size = openai.ImageEditParamsSize(token)
	}
	if req.Quality != "" {
		params.Quality = openai.ImageEditParamsQuality(qualityValue(req.Model, req.Quality))
	}
	if req.Background != "" {
		params.Background = openai.ImageEditParamsBackground(req.Background)
	}

	c.logger.Debug().Str("model", req.Model).Msg("openai: editing with reference image")
	resp, err := c.client.Images.Edit(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return assetFromResponse(resp)
}

func assetFromResponse(resp *openai.ImagesResponse) (*imageapi.FinalAsset, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, Msg: "no image data returned"}
	}
	item := resp.Data[0]
	if item.URL != "" {
		return &imageapi.FinalAsset{URL: item.URL}, nil
	}
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, &domain.ProviderError{Provider: providerName, Msg: fmt.Sprintf("invalid base64 payload: %v", err)}
		}
		return &imageapi.FinalAsset{Data: data, MIME: "image/png"}, nil
	}
	return nil, &domain.ProviderError{Provider: providerName, Msg: "no image data returned"}
}

func sizeToken(req imageapi.NormalizedRequest) string {
	if req.Width > 0 && req.Height > 0 {
		return fmt.Sprintf("%dx%d", req.Width, req.Height)
	}
	return "auto"
}

// qualityValue maps the dashboard's standard/hd knob onto the value each
// model generation expects; gpt-image-1 renamed hd to high.
func qualityValue(model, quality string) string {
	if model == "gpt-image-1" && quality == "hd" {
		return "high"
	}
	return quality
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &domain.SubmitError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Msg:        msg,
		}
	}
	return &domain.ProviderError{Provider: providerName, Msg: err.Error()}
}

var _ imageapi.Client = (*Client)(nil)
