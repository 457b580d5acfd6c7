package genimage

import (
	"fmt"
	"strconv"
	"strings"

	"venueadmin/internal/domain"
	"venueadmin/internal/providers/imageapi"
)

const (
	defaultModel = "dall-e-3"

	minDimension = 256
	maxDimension = 2048
)

// Request is the raw generation payload as the dashboard submits it.
type Request struct {
	SectionID      string               `json:"section_id"`
	PromptID       string               `json:"prompt_id"`
	Prompt         string               `json:"prompt"`
	NegativePrompt string               `json:"negative_prompt,omitempty"`
	Model          string               `json:"model,omitempty"`
	Provider       string               `json:"provider,omitempty"`
	Size           string               `json:"size,omitempty"`
	AspectRatio    string               `json:"aspect_ratio,omitempty"`
	Quality        string               `json:"quality,omitempty"`
	Style          string               `json:"style,omitempty"`
	Background     string               `json:"background,omitempty"`
	Steps          int                  `json:"steps,omitempty"`
	Guidance       float64              `json:"guidance,omitempty"`
	SafetyLevel    int                  `json:"safety_tolerance,omitempty"`
	Raw            bool                 `json:"raw,omitempty"`
	Seed           int                  `json:"seed,omitempty"`
	LoRAs          []imageapi.LoRAWeight `json:"loras,omitempty"`

	ReferenceImageURL string  `json:"reference_image_url,omitempty"`
	UseReferenceImage bool    `json:"use_reference_image,omitempty"`
	ReferenceStrength float64 `json:"reference_strength,omitempty"`
}

// Normalize validates the raw request and maps it to the exact shape the
// routed provider expects, clamping every knob into that model family's
// accepted range. Unknown size tokens are substituted, never rejected.
func Normalize(req Request) (imageapi.NormalizedRequest, ModelSpec, error) {
	if strings.TrimSpace(req.SectionID) == "" ||
		strings.TrimSpace(req.PromptID) == "" ||
		strings.TrimSpace(req.Prompt) == "" {
		return imageapi.NormalizedRequest{}, ModelSpec{}, &domain.ValidationError{Msg: "missing required field"}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = defaultModel
	}
	ms, ok := LookupModel(model)
	if !ok {
		return imageapi.NormalizedRequest{}, ModelSpec{}, &domain.ConfigurationError{
			Msg: fmt.Sprintf("unsupported model %q", model),
		}
	}

	norm := imageapi.NormalizedRequest{
		SectionID: strings.TrimSpace(req.SectionID),
		PromptID:  strings.TrimSpace(req.PromptID),
		Prompt:    buildPrompt(req.Prompt, req.NegativePrompt),
		Model:     ms.ID,
		Provider:  ms.Provider,
	}

	if ms.UsesAspectRatio {
		ratio := strings.TrimSpace(req.AspectRatio)
		if ratio == "" {
			if w, h, ok := parseSize(req.Size); ok {
				ratio = DeriveAspectRatio(w, h)
			}
		}
		if ratio == "" {
			ratio = ms.DefaultAspectRatio
		}
		norm.AspectRatio = ratio
	} else {
		token := resolveSizeOrDefault(ms, req.Size)
		if w, h, ok := parseSize(token); ok {
			norm.Width, norm.Height = clampDimension(w), clampDimension(h)
		}
		// Non-dimensional tokens ("auto") keep Width/Height zero; the
		// synchronous client maps that back to the model's auto mode.
	}

	if ms.Kind == KindSynchronous {
		norm.Quality = resolveEnumOrDefault(req.Quality, []string{"standard", "hd"}, ms.DefaultQuality)
		norm.Style = resolveEnumOrDefault(req.Style, []string{"vivid", "natural"}, ms.DefaultStyle)
	}
	if ms.SupportsBackground {
		norm.Background = backgroundValue(req.Background)
	}

	if ms.HasSteps {
		norm.Steps = req.Steps
		if norm.Steps <= 0 {
			norm.Steps = ms.DefaultSteps
		}
		norm.Guidance = req.Guidance
		if norm.Guidance <= 0 {
			norm.Guidance = ms.DefaultGuidance
		}
	}
	if ms.Kind == KindSubmitPoll {
		norm.SafetyLevel = clampInt(req.SafetyLevel, 0, 6)
		norm.OutputFormat = "jpeg"
		norm.Raw = req.Raw && ms.SupportsRaw
	}
	if req.Seed > 0 {
		norm.Seed = req.Seed
	}

	if ms.SupportsLoRAs && len(req.LoRAs) > 0 {
		loras := make([]imageapi.LoRAWeight, 0, len(req.LoRAs))
		for _, lw := range req.LoRAs {
			loras = append(loras, imageapi.LoRAWeight{
				Path:  strings.TrimSpace(lw.Path),
				Scale: clampFloat(lw.Scale, 0, 2),
			})
		}
		norm.LoRAs = loras
	}

	if ms.SupportsReference && req.UseReferenceImage && strings.TrimSpace(req.ReferenceImageURL) != "" {
		norm.UseReference = true
		norm.ReferenceURL = strings.TrimSpace(req.ReferenceImageURL)
		norm.ReferenceStrength = clampFloat(req.ReferenceStrength, 0, 1)
	}

	return norm, ms, nil
}

// resolveSizeOrDefault is the deliberate leniency policy for size tokens: a
// token outside the model's allow-list is silently replaced by the family's
// documented default. Families without an allow-list accept any parseable
// WIDTHxHEIGHT pair and fall back to the default otherwise.
func resolveSizeOrDefault(ms ModelSpec, size string) string {
	token := strings.ToLower(strings.TrimSpace(size))
	if ms.AllowedSizes != nil {
		for _, allowed := range ms.AllowedSizes {
			if token == allowed {
				return token
			}
		}
		return ms.DefaultSize
	}
	if _, _, ok := parseSize(token); ok {
		return token
	}
	return ms.DefaultSize
}

// DeriveAspectRatio reduces a pixel pair to its smallest integer ratio,
// width first: 1920x1080 -> "16:9", 1024x1792 -> "4:7".
func DeriveAspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	d := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/d, height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func buildPrompt(prompt, negative string) string {
	prompt = strings.TrimSpace(prompt)
	if neg := strings.TrimSpace(negative); neg != "" {
		return prompt + "\n\nAvoid: " + neg
	}
	return prompt
}

func parseSize(size string) (int, int, bool) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(size)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func clampDimension(v int) int {
	return clampInt(v, minDimension, maxDimension)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func resolveEnumOrDefault(value string, allowed []string, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return fallback
}

// backgroundValue honors the background hint only when it is one of the
// values the model advertises; anything else is silently dropped.
func backgroundValue(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "transparent":
		return "transparent"
	case "opaque":
		return "opaque"
	case "auto":
		return "auto"
	}
	return ""
}
