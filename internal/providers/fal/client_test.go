package fal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"venueadmin/internal/domain"
	"venueadmin/internal/providers/imageapi"
	"venueadmin/internal/providers/polling"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

type fakeTransport struct {
	handler  func(req *http.Request) (*http.Response, error)
	requests []*http.Request
	bodies   []string
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	t.requests = append(t.requests, req)
	t.bodies = append(t.bodies, body)
	return t.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const queuedEnvelope = `{
	"request_id": "req-1",
	"status_url": "https://queue.fal.test/fal-ai/flux-lora/requests/req-1/status",
	"response_url": "https://queue.fal.test/fal-ai/flux-lora/requests/req-1"
}`

func newTestClient(t *testing.T, transport *fakeTransport) *Client {
	t.Helper()
	c, err := NewClient(Options{
		APIKey:     "fal-key",
		BaseURL:    "https://queue.fal.test",
		HTTPClient: &http.Client{Transport: transport},
		Sleep:      polling.SleepFunc(noSleep),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func sampleRequest() imageapi.NormalizedRequest {
	return imageapi.NormalizedRequest{
		Prompt:   "crowd view from general admission",
		Model:    "fal-ai/flux-lora",
		Provider: "fal",
		Width:    1024,
		Height:   1024,
		Steps:    28,
		Guidance: 3.5,
	}
}

// queueScript serves submit, then a scripted sequence of status bodies, then
// the final result.
func queueScript(statuses []string, result string) *fakeTransport {
	statusCalls := 0
	return &fakeTransport{handler: func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodPost:
			return jsonResponse(200, queuedEnvelope), nil
		case strings.HasSuffix(req.URL.Path, "/status"):
			body := statuses[statusCalls]
			if statusCalls < len(statuses)-1 {
				statusCalls++
			}
			return jsonResponse(200, body), nil
		default:
			return jsonResponse(200, result), nil
		}
	}}
}

func TestSubscribeWaitsForCompletionAndFetchesResult(t *testing.T) {
	transport := queueScript([]string{
		`{"status":"IN_QUEUE","queue_position":3}`,
		`{"status":"IN_PROGRESS","logs":[{"message":"28/28 steps"}]}`,
		`{"status":"COMPLETED"}`,
	}, `{"images":[{"url":"https://cdn.fal.test/out.png"}]}`)

	c := newTestClient(t, transport)
	var updates []QueueUpdate
	asset, err := c.Subscribe(context.Background(), sampleRequest(), func(u QueueUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if asset.URL != "https://cdn.fal.test/out.png" {
		t.Fatalf("asset url = %q", asset.URL)
	}
	if len(updates) != 3 {
		t.Fatalf("updates = %d, want 3", len(updates))
	}
	if updates[0].Position != 3 {
		t.Errorf("first update position = %d, want 3", updates[0].Position)
	}
	if len(updates[1].Logs) != 1 || updates[1].Logs[0] != "28/28 steps" {
		t.Errorf("second update logs = %v", updates[1].Logs)
	}

	if got := transport.requests[0].Header.Get("Authorization"); got != "Key fal-key" {
		t.Errorf("Authorization = %q, want Key fal-key", got)
	}
	if got := transport.requests[1].URL.RawQuery; got != "logs=1" {
		t.Errorf("status query = %q, want logs=1", got)
	}
}

func TestSubscribeSubmitPayload(t *testing.T) {
	transport := queueScript([]string{`{"status":"COMPLETED"}`},
		`{"images":[{"url":"https://cdn.fal.test/out.png"}]}`)

	c := newTestClient(t, transport)
	req := sampleRequest()
	req.LoRAs = []imageapi.LoRAWeight{
		{Path: "XLabs-AI/flux-RealismLora", Scale: 0.8},
		{Path: "   ", Scale: 1.0},
	}
	req.UseReference = true
	req.ReferenceURL = "https://cdn.example.com/ref.jpg"
	req.ReferenceStrength = 0.6
	if _, err := c.Subscribe(context.Background(), req, nil); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if got := transport.requests[0].URL.String(); got != "https://queue.fal.test/fal-ai/flux-lora" {
		t.Errorf("submit url = %q", got)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(transport.bodies[0]), &payload); err != nil {
		t.Fatalf("decode submit body: %v", err)
	}
	if payload["num_inference_steps"] != float64(28) || payload["guidance_scale"] != 3.5 {
		t.Errorf("steps/guidance = %v/%v", payload["num_inference_steps"], payload["guidance_scale"])
	}
	if payload["num_images"] != float64(1) {
		t.Errorf("num_images = %v, want 1", payload["num_images"])
	}
	loras, _ := payload["loras"].([]any)
	if len(loras) != 1 {
		t.Fatalf("loras = %v, want the blank path dropped", payload["loras"])
	}
	if payload["image_url"] != "https://cdn.example.com/ref.jpg" || payload["strength"] != 0.6 {
		t.Errorf("reference fields = %v / %v", payload["image_url"], payload["strength"])
	}
}

func TestSubscribeFailedJob(t *testing.T) {
	transport := queueScript([]string{`{"status":"FAILED"}`}, `{}`)

	c := newTestClient(t, transport)
	_, err := c.Subscribe(context.Background(), sampleRequest(), nil)
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Subscribe() error = %v, want ProviderError", err)
	}
}

func TestSubscribeEmptyResult(t *testing.T) {
	transport := queueScript([]string{`{"status":"COMPLETED"}`}, `{"images":[]}`)

	c := newTestClient(t, transport)
	_, err := c.Subscribe(context.Background(), sampleRequest(), nil)
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Subscribe() error = %v, want ProviderError", err)
	}
	if !strings.Contains(pe.Msg, "no images") {
		t.Fatalf("msg = %q", pe.Msg)
	}
}

func TestSubscribeSubmitRejection(t *testing.T) {
	transport := &fakeTransport{handler: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(403, `{"detail":"invalid key"}`), nil
	}}

	c := newTestClient(t, transport)
	_, err := c.Subscribe(context.Background(), sampleRequest(), nil)
	var se *domain.SubmitError
	if !errors.As(err, &se) {
		t.Fatalf("Subscribe() error = %v, want SubmitError", err)
	}
	if se.StatusCode != 403 {
		t.Fatalf("status = %d, want 403", se.StatusCode)
	}
}

func TestSubscribeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := &fakeTransport{handler: func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodPost {
			return jsonResponse(200, queuedEnvelope), nil
		}
		cancel()
		return jsonResponse(200, `{"status":"IN_PROGRESS"}`), nil
	}}

	c, err := NewClient(Options{
		APIKey:     "fal-key",
		BaseURL:    "https://queue.fal.test",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = c.Subscribe(ctx, sampleRequest(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Subscribe() error = %v, want context.Canceled", err)
	}
}

func TestSubscribeWithoutCredentials(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = c.Subscribe(context.Background(), sampleRequest(), nil)
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("Subscribe() error = %v, want ConfigurationError", err)
	}
}
