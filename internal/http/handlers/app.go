// Package handlers implements the admin HTTP surface: generation requests,
// the review queue, and the style-adapter catalog.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"venueadmin/internal/domain"
	"venueadmin/internal/genimage"
)

// Pipeline runs one generation request end to end.
type Pipeline interface {
	Generate(ctx context.Context, req genimage.Request) (*domain.GeneratedImage, error)
}

// ImageStore is the slice of the image repository the handlers use.
type ImageStore interface {
	GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error)
	ListBySection(ctx context.Context, sectionID string) ([]domain.GeneratedImage, error)
	UpdateStatus(ctx context.Context, id string, status domain.ImageStatus, notes *string) (*domain.GeneratedImage, error)
	SetGlobalReference(ctx context.Context, id string, pinned bool) (*domain.GeneratedImage, error)
}

// SectionStore covers the section mutation triggered by an approval.
type SectionStore interface {
	UpdateCurrentImage(ctx context.Context, sectionID, imageURL string) error
}

// App is the handler container; collaborators are injected so tests can
// stub them. HTTP fetches stored assets for archive downloads.
type App struct {
	Logger   zerolog.Logger
	Pipeline Pipeline
	Images   ImageStore
	Sections SectionStore
	HTTP     *http.Client
}

func NewApp(logger zerolog.Logger, pipeline Pipeline, images ImageStore, sections SectionStore) *App {
	return &App{
		Logger:   logger,
		Pipeline: pipeline,
		Images:   images,
		Sections: sections,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the flat error envelope every endpoint shares.
func (a *App) error(w http.ResponseWriter, code int, msg, details string) {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	a.json(w, code, body)
}

// pipelineStatus maps a pipeline failure to an HTTP status. Caller input
// problems are 400, missing wiring 500, provider-side failures 502, a poll
// cap 504, and local storage or record writes 500.
func pipelineStatus(err error) int {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigurationError
		submitErr     *domain.SubmitError
		providerErr   *domain.ProviderError
		timeoutErr    *domain.TimeoutError
		fetchErr      *domain.FetchError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &submitErr), errors.As(err, &providerErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
