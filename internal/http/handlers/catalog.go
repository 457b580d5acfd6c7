package handlers

import (
	"net/http"

	"venueadmin/internal/genimage"
	"venueadmin/internal/loras"
)

type modelInfo struct {
	Name               string `json:"name"`
	Provider           string `json:"provider"`
	SupportsReference  bool   `json:"supports_reference"`
	SupportsLoRAs      bool   `json:"supports_loras"`
	SupportsBackground bool   `json:"supports_background"`
}

// Models lists the routable model catalog.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	specs := genimage.Models()
	out := make([]modelInfo, 0, len(specs))
	for _, ms := range specs {
		out = append(out, modelInfo{
			Name:               ms.ID,
			Provider:           ms.Provider,
			SupportsReference:  ms.SupportsReference,
			SupportsLoRAs:      ms.SupportsLoRAs,
			SupportsBackground: ms.SupportsBackground,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"models": out})
}

type loraInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Path             string   `json:"path"`
	Description      string   `json:"description"`
	RecommendedScale float64  `json:"recommended_scale"`
	Category         string   `json:"category"`
	TriggerWords     []string `json:"trigger_words,omitempty"`
}

type presetInfo struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	LoRAs           []presetWeight `json:"loras"`
	PromptAdditions string         `json:"prompt_additions"`
	VenueSection    string         `json:"venue_section"`
}

type presetWeight struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

// LoRACatalog lists the curated adapters and, when ?section= is given,
// the presets matching that section.
func (a *App) LoRACatalog(w http.ResponseWriter, r *http.Request) {
	ms := loras.Models()
	outModels := make([]loraInfo, 0, len(ms))
	for _, m := range ms {
		outModels = append(outModels, loraInfo{
			ID:               m.ID,
			Name:             m.Name,
			Path:             m.Path,
			Description:      m.Description,
			RecommendedScale: m.RecommendedScale,
			Category:         string(m.Category),
			TriggerWords:     m.TriggerWords,
		})
	}

	ps := loras.Presets()
	if section := r.URL.Query().Get("section"); section != "" {
		ps = loras.PresetsForSection(section)
	}
	outPresets := make([]presetInfo, 0, len(ps))
	for _, p := range ps {
		weights := make([]presetWeight, 0, len(p.LoRAs))
		for _, lw := range p.LoRAs {
			weights = append(weights, presetWeight{Path: lw.Path, Scale: lw.Scale})
		}
		outPresets = append(outPresets, presetInfo{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			LoRAs:           weights,
			PromptAdditions: p.PromptAdditions,
			VenueSection:    p.VenueSection,
		})
	}

	a.json(w, http.StatusOK, map[string]any{"models": outModels, "presets": outPresets})
}
