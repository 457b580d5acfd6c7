package genimage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"venueadmin/internal/domain"
	"venueadmin/internal/postprocess"
	"venueadmin/internal/providers/imageapi"
	"venueadmin/internal/storage"
)

// Pipeline stage names used in error envelopes.
const (
	stageNormalize   = "normalize"
	stageReference   = "resolve-reference"
	stageDispatch    = "dispatch"
	stageDownload    = "download"
	stagePostProcess = "post-process"
	stageUpload      = "upload"
	stagePersist     = "persist"
)

// Recorder persists the final record of a successful generation.
type Recorder interface {
	Insert(ctx context.Context, img *domain.GeneratedImage) error
}

// referenceResolver is satisfied by *ReferenceResolver.
type referenceResolver interface {
	Resolve(ctx context.Context, url string) ([]byte, error)
}

// Orchestrator wires the pipeline: normalize, resolve the reference if the
// routed provider needs inline bytes, dispatch, download, post-process,
// upload, persist. Steps run strictly in sequence; any failure
// short-circuits the rest and nothing is persisted.
type Orchestrator struct {
	clients    map[ClientKind]imageapi.Client
	resolver   referenceResolver
	store      storage.Store
	recorder   Recorder
	httpClient *http.Client
	logger     zerolog.Logger

	// processFn defaults to postprocess.Process; swapped in tests.
	processFn func([]byte) (*postprocess.Result, error)
	now       func() time.Time
}

// OrchestratorOptions collects the pipeline's collaborators. Clients may be
// sparse: a request routed to an absent client fails with a configuration
// error before any network call.
type OrchestratorOptions struct {
	Clients    map[ClientKind]imageapi.Client
	Resolver   *ReferenceResolver
	Store      storage.Store
	Recorder   Recorder
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewOrchestrator builds an orchestrator from its collaborators.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewReferenceResolver(httpClient)
	}
	return &Orchestrator{
		clients:    opts.Clients,
		resolver:   resolver,
		store:      opts.Store,
		recorder:   opts.Recorder,
		httpClient: httpClient,
		logger:     opts.Logger,
		processFn:  postprocess.Process,
		now:        time.Now,
	}
}

// Generate runs one request through the full pipeline and returns the
// persisted record. Errors are wrapped with the stage that raised them.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*domain.GeneratedImage, error) {
	norm, ms, err := Normalize(req)
	if err != nil {
		return nil, &domain.PipelineError{Stage: stageNormalize, Err: err}
	}
	norm.RequestID = uuid.NewString()

	client, ok := o.clients[ms.Kind]
	if !ok || client == nil {
		return nil, &domain.PipelineError{
			Stage: stageDispatch,
			Err:   &domain.ConfigurationError{Msg: fmt.Sprintf("no client configured for provider %q", ms.Provider)},
		}
	}

	// Providers that take a pass-through URL skip resolution entirely; the
	// rest need the bytes before dispatch.
	if norm.UseReference && ms.Kind != KindSubscribe {
		data, err := o.resolver.Resolve(ctx, norm.ReferenceURL)
		if err != nil {
			return nil, &domain.PipelineError{Stage: stageReference, Err: err}
		}
		norm.ReferenceData = data
	}

	logger := o.logger.With().
		Str("request_id", norm.RequestID).
		Str("model", norm.Model).
		Str("provider", norm.Provider).
		Logger()
	logger.Info().Msg("genimage: dispatching generation")

	asset, err := client.Generate(ctx, norm)
	if err != nil {
		return nil, &domain.PipelineError{Stage: stageDispatch, Err: err}
	}

	raw := asset.Data
	if !asset.Inline() {
		raw, err = o.download(ctx, asset.URL)
		if err != nil {
			return nil, &domain.PipelineError{Stage: stageDownload, Err: err}
		}
	}

	processed, err := o.processFn(raw)
	if err != nil {
		return nil, &domain.PipelineError{
			Stage: stagePostProcess,
			Err:   &domain.ProviderError{Provider: norm.Provider, Msg: err.Error()},
		}
	}

	publicURL, err := o.store.Upload(ctx, processed.Data, storage.CategoryGenerated)
	if err != nil {
		return nil, &domain.PipelineError{Stage: stageUpload, Err: wrapStorageErr(err)}
	}

	settings, err := json.Marshal(newSettingsSnapshot(req, norm))
	if err != nil {
		return nil, &domain.PipelineError{Stage: stagePersist, Err: &domain.PersistenceError{Err: err}}
	}

	record := &domain.GeneratedImage{
		ID:                 uuid.NewString(),
		SectionID:          norm.SectionID,
		PromptID:           norm.PromptID,
		ImageURL:           publicURL,
		ModelName:          norm.Model,
		ModelProvider:      norm.Provider,
		Status:             domain.ImageStatusPending,
		GenerationSettings: settings,
		CreatedAt:          o.now().UTC(),
	}
	if err := o.recorder.Insert(ctx, record); err != nil {
		// The uploaded object is orphaned here; no compensating delete.
		return nil, &domain.PipelineError{Stage: stagePersist, Err: wrapPersistenceErr(err)}
	}

	logger.Info().
		Str("image_id", record.ID).
		Str("image_url", record.ImageURL).
		Int("width", processed.Width).
		Int("height", processed.Height).
		Msg("genimage: generation recorded")
	return record, nil
}

func (o *Orchestrator) download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("invalid asset url: %v", err)}
	}
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("download asset: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode, Msg: "failed to download generated asset"}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("read asset: %v", err)}
	}
	return data, nil
}

// settingsSnapshot captures both the caller's raw knobs and the resolved
// values so any generation can be replayed exactly. Stored as an opaque
// blob, never validated against a schema.
type settingsSnapshot struct {
	Size               string                `json:"size,omitempty"`
	ResolvedSize       string                `json:"resolvedSize,omitempty"`
	AspectRatio        string                `json:"aspectRatio,omitempty"`
	Quality            string                `json:"quality,omitempty"`
	Style              string                `json:"style,omitempty"`
	Background         string                `json:"background,omitempty"`
	Seed               int                   `json:"seed,omitempty"`
	Steps              int                   `json:"steps,omitempty"`
	Guidance           float64               `json:"guidance,omitempty"`
	SafetyTolerance    int                   `json:"safetyTolerance,omitempty"`
	Raw                bool                  `json:"raw,omitempty"`
	LoRAs              []imageapi.LoRAWeight `json:"loras,omitempty"`
	ReferenceImageURL  string                `json:"referenceImageUrl,omitempty"`
	ReferenceStrength  float64               `json:"referenceStrength,omitempty"`
	UsedReferenceImage bool                  `json:"usedReferenceImage"`
	Prompt             string                `json:"prompt"`
	NegativePrompt     string                `json:"negativePrompt,omitempty"`
}

func newSettingsSnapshot(req Request, norm imageapi.NormalizedRequest) settingsSnapshot {
	resolved := ""
	if norm.Width > 0 && norm.Height > 0 {
		resolved = fmt.Sprintf("%dx%d", norm.Width, norm.Height)
	}
	return settingsSnapshot{
		Size:               req.Size,
		ResolvedSize:       resolved,
		AspectRatio:        norm.AspectRatio,
		Quality:            norm.Quality,
		Style:              norm.Style,
		Background:         norm.Background,
		Seed:               norm.Seed,
		Steps:              norm.Steps,
		Guidance:           norm.Guidance,
		SafetyTolerance:    norm.SafetyLevel,
		Raw:                norm.Raw,
		LoRAs:              norm.LoRAs,
		ReferenceImageURL:  norm.ReferenceURL,
		ReferenceStrength:  norm.ReferenceStrength,
		UsedReferenceImage: norm.UseReference,
		Prompt:             req.Prompt,
		NegativePrompt:     req.NegativePrompt,
	}
}

func wrapStorageErr(err error) error {
	if _, ok := err.(*domain.StorageError); ok {
		return err
	}
	return &domain.StorageError{Op: "upload", Err: err}
}

func wrapPersistenceErr(err error) error {
	if _, ok := err.(*domain.PersistenceError); ok {
		return err
	}
	return &domain.PersistenceError{Err: err}
}
