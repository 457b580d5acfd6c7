// Package loras holds the curated style-adapter catalog for the dev-tier
// FLUX pipeline: LoRA weight overlays tuned for concert and venue
// photography, plus per-section presets pairing adapters with prompt
// additions.
package loras

import "venueadmin/internal/providers/imageapi"

// Category groups adapters by what they are best at.
type Category string

const (
	CategoryRealism     Category = "realism"
	CategoryCinematic   Category = "cinematic"
	CategoryConcert     Category = "concert"
	CategoryPhotography Category = "photography"
)

// Model describes one curated LoRA adapter.
type Model struct {
	ID               string
	Name             string
	Path             string
	Description      string
	RecommendedScale float64
	Category         Category
	TriggerWords     []string
}

// Preset pairs a venue section with the adapter mix and prompt additions
// that photograph it best. Section "Any" applies everywhere.
type Preset struct {
	ID              string
	Name            string
	Description     string
	LoRAs           []imageapi.LoRAWeight
	PromptAdditions string
	VenueSection    string
}

var models = []Model{
	{
		ID:               "edm-festival-stage",
		Name:             "EDM Festival Stage",
		Path:             "Purz/edm-festival-stage",
		Description:      "Trained on professional EDM festival stage photographs with complex lighting rigs",
		RecommendedScale: 1.0,
		Category:         CategoryConcert,
		TriggerWords:     []string{"3dm_f35t1v47"},
	},
	{
		ID:               "xlabs-realism",
		Name:             "XLabs Realism LoRA",
		Path:             "XLabs-AI/flux-RealismLora",
		Description:      "Official realism enhancement for FLUX.1-dev, improves photographic quality",
		RecommendedScale: 0.8,
		Category:         CategoryRealism,
	},
	{
		ID:               "super-realism",
		Name:             "Super Realism",
		Path:             "strangerzonehf/Flux-Super-Realism-LoRA",
		Description:      "High-quality photorealism with particular strength in portraits and crowd scenes",
		RecommendedScale: 1.0,
		Category:         CategoryRealism,
		TriggerWords:     []string{"Super Realism"},
	},
	{
		ID:               "canopus-ultra",
		Name:             "Canopus UltraRealism 2.0",
		Path:             "prithivMLmods/Canopus-LoRA-Flux-UltraRealism-2.0",
		Description:      "Trained on high-resolution images for ultra-realistic photography",
		RecommendedScale: 0.9,
		Category:         CategoryRealism,
		TriggerWords:     []string{"Ultra realistic"},
	},
	{
		ID:               "kontext-ultimate",
		Name:             "Flux Kontext Ultimate",
		Path:             "strangerzonehf/Flux-Kontext-Ultimate-LoRA",
		Description:      "Advanced cinematic lighting with dramatic film-grade results",
		RecommendedScale: 0.7,
		Category:         CategoryCinematic,
	},
	{
		ID:               "flux-photography",
		Name:             "Flux Photography",
		Path:             "imagepipeline/Flux-Realism-LoRA",
		Description:      "General photography enhancement with improved composition and lighting",
		RecommendedScale: 0.8,
		Category:         CategoryPhotography,
	},
}

var presets = []Preset{
	{
		ID:          "front-center",
		Name:        "Front Center",
		Description: "Center front perspective, optimal stage view with front crowd",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 1.0},
			{Path: "XLabs-AI/flux-RealismLora", Scale: 0.8},
		},
		PromptAdditions: "Super Realism, concert crowd, center view, energetic atmosphere, professional photography",
		VenueSection:    "Front Center",
	},
	{
		ID:          "front-left",
		Name:        "Front Left",
		Description: "Stage left perspective, close crowd energy with stage visibility",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 1.0},
			{Path: "Purz/edm-festival-stage", Scale: 0.9},
		},
		PromptAdditions: "Super Realism, concert crowd, stage left view, energetic atmosphere, 3dm_f35t1v47",
		VenueSection:    "Front Left",
	},
	{
		ID:          "front-right",
		Name:        "Front Right",
		Description: "Stage right perspective, close crowd energy with stage visibility",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 1.0},
			{Path: "Purz/edm-festival-stage", Scale: 0.9},
		},
		PromptAdditions: "Super Realism, concert crowd, stage right view, energetic atmosphere, 3dm_f35t1v47",
		VenueSection:    "Front Right",
	},
	{
		ID:          "middle-center",
		Name:        "Middle Center",
		Description: "Perfect center mid-level view, classic amphitheater perspective",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "prithivMLmods/Canopus-LoRA-Flux-UltraRealism-2.0", Scale: 0.9},
			{Path: "Purz/edm-festival-stage", Scale: 0.8},
		},
		PromptAdditions: "Ultra realistic, amphitheater, natural rock formations, center perspective, concert atmosphere",
		VenueSection:    "Middle Center",
	},
	{
		ID:          "back-center",
		Name:        "Back Center",
		Description: "Upper center wide shot, classic panoramic venue view",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "XLabs-AI/flux-RealismLora", Scale: 0.9},
			{Path: "strangerzonehf/Flux-Kontext-Ultimate-LoRA", Scale: 0.6},
		},
		PromptAdditions: "professional photography, wide angle, dramatic lighting, mountain landscape, center panorama",
		VenueSection:    "Back Center",
	},
	{
		ID:          "general-admission",
		Name:        "General Admission",
		Description: "Dynamic GA floor experience with immersive crowd energy",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 1.0},
			{Path: "XLabs-AI/flux-RealismLora", Scale: 0.8},
		},
		PromptAdditions: "Super Realism, concert crowd, GA floor, immersive perspective, energetic atmosphere",
		VenueSection:    "General Admission",
	},
	{
		ID:          "pit",
		Name:        "Pit",
		Description: "Closest to stage, intense energy with dramatic stage lighting",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "Purz/edm-festival-stage", Scale: 1.0},
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 0.9},
		},
		PromptAdditions: "3dm_f35t1v47, Super Realism, pit section, extreme close-up, stage lighting, intense energy",
		VenueSection:    "Pit",
	},
	{
		ID:          "artistic-cinematic",
		Name:        "Artistic/Cinematic",
		Description: "Dramatic, film-grade concert photography for any section",
		LoRAs: []imageapi.LoRAWeight{
			{Path: "strangerzonehf/Flux-Kontext-Ultimate-LoRA", Scale: 0.8},
			{Path: "strangerzonehf/Flux-Super-Realism-LoRA", Scale: 0.7},
		},
		PromptAdditions: "Super Realism, cinematic lighting, dramatic atmosphere, artistic concert photography",
		VenueSection:    "Any",
	},
}

// Models returns the adapter catalog.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Presets returns the section preset list.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ModelByID looks an adapter up by its catalog id.
func ModelByID(id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// ModelsByCategory filters the catalog by category.
func ModelsByCategory(c Category) []Model {
	var out []Model
	for _, m := range models {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// PresetByID looks a preset up by id.
func PresetByID(id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetsForSection returns the presets matching a section name, always
// including the universal "Any" presets.
func PresetsForSection(section string) []Preset {
	var out []Preset
	for _, p := range presets {
		if p.VenueSection == section || p.VenueSection == "Any" {
			out = append(out, p)
		}
	}
	return out
}
