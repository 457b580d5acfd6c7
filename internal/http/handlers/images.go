package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"venueadmin/internal/domain"
	"venueadmin/internal/genimage"
)

// ImagesGenerate runs the synchronous generation pipeline. The connection
// stays open for the whole run, long-polling providers included.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req genimage.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	img, err := a.Pipeline.Generate(r.Context(), req)
	if err != nil {
		var pe *domain.PipelineError
		stage := "pipeline"
		if errors.As(err, &pe) {
			stage = pe.Stage
		}
		a.Logger.Error().Err(err).Str("stage", stage).Str("model", req.Model).Msg("handlers: generation failed")
		a.error(w, pipelineStatus(err), "image generation failed", err.Error())
		return
	}

	a.json(w, http.StatusOK, img)
}

type updateStatusRequest struct {
	Status          string  `json:"status"`
	ComparisonNotes *string `json:"comparison_notes"`
}

// ImageUpdateStatus moves a record through the review lifecycle. An approval
// also repoints the owning section at the new image.
func (a *App) ImageUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	status := domain.ImageStatus(req.Status)
	if !domain.ValidImageStatus(status) {
		a.error(w, http.StatusBadRequest, "invalid status", "status must be pending, approved or rejected")
		return
	}

	img, err := a.Images.UpdateStatus(r.Context(), id, status, req.ComparisonNotes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "image not found", "")
			return
		}
		a.Logger.Error().Err(err).Str("image_id", id).Msg("handlers: status update failed")
		a.error(w, http.StatusInternalServerError, "failed to update image", "")
		return
	}

	if status == domain.ImageStatusApproved {
		if err := a.Sections.UpdateCurrentImage(r.Context(), img.SectionID, img.ImageURL); err != nil {
			// The image is already approved; surface the partial failure
			// instead of rolling back.
			a.Logger.Error().Err(err).Str("section_id", img.SectionID).Msg("handlers: section image swap failed")
			a.error(w, http.StatusInternalServerError, "image approved but section update failed", err.Error())
			return
		}
	}

	a.json(w, http.StatusOK, img)
}

type globalReferenceRequest struct {
	IsGlobalReference bool `json:"is_global_reference"`
}

// ImageSetGlobalReference pins or unpins a record as the cross-section
// style reference.
func (a *App) ImageSetGlobalReference(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req globalReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	img, err := a.Images.SetGlobalReference(r.Context(), id, req.IsGlobalReference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "image not found", "")
			return
		}
		a.Logger.Error().Err(err).Str("image_id", id).Msg("handlers: global reference update failed")
		a.error(w, http.StatusInternalServerError, "failed to update image", "")
		return
	}

	a.json(w, http.StatusOK, img)
}

// SectionImages lists a section's generated images, newest first.
func (a *App) SectionImages(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "id")

	images, err := a.Images.ListBySection(r.Context(), sectionID)
	if err != nil {
		a.Logger.Error().Err(err).Str("section_id", sectionID).Msg("handlers: section listing failed")
		a.error(w, http.StatusInternalServerError, "failed to list images", "")
		return
	}
	if images == nil {
		images = []domain.GeneratedImage{}
	}
	a.json(w, http.StatusOK, map[string]any{"images": images})
}
