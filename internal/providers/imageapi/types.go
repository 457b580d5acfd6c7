package imageapi

import "context"

// LoRAWeight is a style-adapter overlay attached to a generation request:
// a model path plus an influence scale in [0, 2].
type LoRAWeight struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

// NormalizedRequest is the provider-agnostic request every client consumes.
// Exactly one of {Width/Height, AspectRatio} is meaningful for a given model
// family; the normalizer guarantees the other is zeroed.
type NormalizedRequest struct {
	SectionID string
	PromptID  string
	RequestID string

	Prompt   string
	Model    string
	Provider string

	Width       int
	Height      int
	AspectRatio string

	Quality      string
	Style        string
	Background   string
	Steps        int
	Guidance     float64
	SafetyLevel  int
	Raw          bool
	Seed         int
	OutputFormat string

	LoRAs []LoRAWeight

	// Reference-image conditioning. ReferenceURL is always carried;
	// ReferenceData is populated lazily, only for clients that need inline
	// bytes rather than a pass-through URL.
	UseReference      bool
	ReferenceURL      string
	ReferenceData     []byte
	ReferenceStrength float64
}

// FinalAsset is the terminal output of any provider client: either inline
// bytes with a MIME hint, or a URL the caller still has to download.
type FinalAsset struct {
	Data []byte
	MIME string
	URL  string
}

// Inline reports whether the asset bytes are already in memory.
func (a *FinalAsset) Inline() bool { return a != nil && len(a.Data) > 0 }

// Client is the contract shared by the synchronous, submit/poll and
// subscribe provider variants: submit one normalized request, block until the
// final asset is available or a typed failure occurs.
type Client interface {
	Name() string
	Generate(ctx context.Context, req NormalizedRequest) (*FinalAsset, error)
}
