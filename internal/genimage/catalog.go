package genimage

import "strings"

// ClientKind selects which provider protocol serves a model.
type ClientKind string

const (
	// KindSynchronous is a single round trip whose response carries the
	// final asset directly.
	KindSynchronous ClientKind = "synchronous"
	// KindSubmitPoll submits a job and polls a status endpoint until a
	// terminal state or the attempt cap.
	KindSubmitPoll ClientKind = "submit_poll"
	// KindSubscribe is a single blocking call that waits for completion
	// internally, surfacing progress observations along the way.
	KindSubscribe ClientKind = "subscribe"
)

// ModelSpec is one row of the static model-to-client routing table. Routing
// lives here as data so no provider branching leaks into the orchestrator.
type ModelSpec struct {
	ID       string
	Provider string
	Kind     ClientKind

	// AllowedSizes is the model's accepted size-token enumeration; nil
	// means the family takes free-form WIDTHxHEIGHT dimensions instead.
	AllowedSizes []string
	DefaultSize  string

	// UsesAspectRatio marks families that take a reduced ratio ("16:9")
	// instead of pixel dimensions.
	UsesAspectRatio    bool
	DefaultAspectRatio string

	DefaultQuality string
	DefaultStyle   string

	SupportsReference  bool
	SupportsBackground bool
	SupportsRaw        bool
	SupportsLoRAs      bool

	HasSteps        bool
	DefaultSteps    int
	DefaultGuidance float64
}

var modelCatalog = []ModelSpec{
	{
		ID:             "dall-e-3",
		Provider:       "openai",
		Kind:           KindSynchronous,
		AllowedSizes:   []string{"1024x1024", "1792x1024", "1024x1792"},
		DefaultSize:    "1792x1024",
		DefaultQuality: "hd",
		DefaultStyle:   "vivid",
	},
	{
		ID:                 "gpt-image-1",
		Provider:           "openai",
		Kind:               KindSynchronous,
		AllowedSizes:       []string{"auto", "1024x1024", "1536x1024", "1024x1536"},
		DefaultSize:        "auto",
		DefaultQuality:     "standard",
		DefaultStyle:       "natural",
		SupportsReference:  true,
		SupportsBackground: true,
	},
	{
		ID:             "stabilityai/stable-diffusion-3",
		Provider:       "stability",
		Kind:           KindSynchronous,
		DefaultSize:    "1024x1024",
		DefaultQuality: "standard",
		DefaultStyle:   "vivid",
	},
	{
		ID:          "black-forest-labs/flux-pro",
		Provider:    "black-forest-labs",
		Kind:        KindSubmitPoll,
		DefaultSize: "1024x1024",
	},
	{
		ID:          "black-forest-labs/flux-pro-1.1",
		Provider:    "black-forest-labs",
		Kind:        KindSubmitPoll,
		DefaultSize: "1024x1024",
	},
	{
		ID:                 "black-forest-labs/flux-pro-1.1-ultra",
		Provider:           "black-forest-labs",
		Kind:               KindSubmitPoll,
		UsesAspectRatio:    true,
		DefaultAspectRatio: "16:9",
		SupportsRaw:        true,
		SupportsReference:  true,
	},
	{
		// The kontext tier is image-to-image: a reference photo conditions
		// the generation rather than merely hinting at it.
		ID:                 "black-forest-labs/flux-kontext-max",
		Provider:           "black-forest-labs",
		Kind:               KindSubmitPoll,
		UsesAspectRatio:    true,
		DefaultAspectRatio: "16:9",
		SupportsReference:  true,
	},
	{
		ID:                 "black-forest-labs/flux-kontext-pro",
		Provider:           "black-forest-labs",
		Kind:               KindSubmitPoll,
		UsesAspectRatio:    true,
		DefaultAspectRatio: "16:9",
		SupportsReference:  true,
	},
	{
		ID:                 "black-forest-labs/flux-kontext-dev",
		Provider:           "black-forest-labs",
		Kind:               KindSubmitPoll,
		UsesAspectRatio:    true,
		DefaultAspectRatio: "16:9",
		SupportsReference:  true,
		HasSteps:           true,
		DefaultSteps:       28,
		DefaultGuidance:    2.5,
	},
	{
		ID:              "black-forest-labs/flux-dev",
		Provider:        "black-forest-labs",
		Kind:            KindSubmitPoll,
		DefaultSize:     "1024x1024",
		HasSteps:        true,
		DefaultSteps:    28,
		DefaultGuidance: 3.0,
	},
	{
		// Dev-tier FLUX with style adapters. The only model served by the
		// subscribe protocol; everything else FLUX goes through submit/poll.
		ID:                "fal-ai/flux-lora",
		Provider:          "fal",
		Kind:              KindSubscribe,
		DefaultSize:       "1024x1024",
		SupportsLoRAs:     true,
		SupportsReference: true,
		HasSteps:          true,
		DefaultSteps:      28,
		DefaultGuidance:   3.5,
	},
}

// LookupModel resolves a model identifier against the routing table.
func LookupModel(id string) (ModelSpec, bool) {
	id = strings.TrimSpace(id)
	for _, ms := range modelCatalog {
		if ms.ID == id {
			return ms, true
		}
	}
	return ModelSpec{}, false
}

// Models returns the routing table, for listing endpoints.
func Models() []ModelSpec {
	out := make([]ModelSpec, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}
