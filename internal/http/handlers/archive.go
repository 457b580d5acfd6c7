package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"venueadmin/pkg/zip"
)

// SectionImagesArchive bundles a section's generated images into one zip
// download. Images that cannot be fetched are skipped, not fatal; the
// archive ships whatever was reachable.
func (a *App) SectionImagesArchive(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "id")

	images, err := a.Images.ListBySection(r.Context(), sectionID)
	if err != nil {
		a.Logger.Error().Err(err).Str("section_id", sectionID).Msg("handlers: archive listing failed")
		a.error(w, http.StatusInternalServerError, "failed to list images", "")
		return
	}
	if len(images) == 0 {
		a.error(w, http.StatusNotFound, "no images for section", "")
		return
	}

	assets := make([]zip.Asset, 0, len(images))
	for _, img := range images {
		data := a.fetchAsset(r, img.ImageURL)
		if data == nil {
			a.Logger.Warn().Str("image_id", img.ID).Str("url", img.ImageURL).Msg("handlers: skipping unreachable image")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%s-%s", sectionID, img.ID),
			MIME:     "image/jpeg",
			Data:     data,
		})
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.Logger.Error().Err(err).Str("section_id", sectionID).Msg("handlers: archive build failed")
		a.error(w, http.StatusInternalServerError, "failed to build archive", "")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=section-%s.zip", sectionID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) fetchAsset(r *http.Request, url string) []byte {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return data
}
