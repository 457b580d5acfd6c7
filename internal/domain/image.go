package domain

import (
	"encoding/json"
	"time"
)

// ImageStatus enumerates the review lifecycle of a generated image.
type ImageStatus string

const (
	ImageStatusPending  ImageStatus = "pending"
	ImageStatusApproved ImageStatus = "approved"
	ImageStatusRejected ImageStatus = "rejected"
)

// ValidImageStatus reports whether s is one of the known lifecycle states.
func ValidImageStatus(s ImageStatus) bool {
	switch s {
	case ImageStatusPending, ImageStatusApproved, ImageStatusRejected:
		return true
	}
	return false
}

// GeneratedImage is the persisted record of one successful generation. The
// pipeline writes it exactly once with status pending; only review actions
// (approve/reject, pin/unpin) mutate it afterwards.
type GeneratedImage struct {
	ID                 string          `json:"id"`
	SectionID          string          `json:"section_id"`
	PromptID           string          `json:"prompt_id"`
	ImageURL           string          `json:"image_url"`
	ModelName          string          `json:"model_name"`
	ModelProvider      string          `json:"model_provider"`
	Status             ImageStatus     `json:"status"`
	GenerationSettings json.RawMessage `json:"generation_settings"`
	ComparisonNotes    *string         `json:"comparison_notes,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	RejectedAt         *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	IsGlobalReference  bool            `json:"is_global_reference"`
}

// Section is the slice of the venue-section record the pipeline touches: on
// approval the section's current image is swapped to the approved asset.
type Section struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SectionCode     string    `json:"section_code"`
	CurrentImageURL *string   `json:"current_image_url,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
