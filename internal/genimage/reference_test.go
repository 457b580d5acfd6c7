package genimage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"venueadmin/internal/domain"
)

type staticTransport struct {
	status int
	body   string
}

func (t *staticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
	}, nil
}

func TestResolveReturnsBytes(t *testing.T) {
	r := NewReferenceResolver(&http.Client{Transport: &staticTransport{status: 200, body: "image data"}})
	data, err := r.Resolve(context.Background(), "https://cdn.example.com/ref.jpg")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if string(data) != "image data" {
		t.Fatalf("data = %q", data)
	}
}

func TestResolveNon2xxIsFetchError(t *testing.T) {
	r := NewReferenceResolver(&http.Client{Transport: &staticTransport{status: 404, body: "missing"}})
	_, err := r.Resolve(context.Background(), "https://cdn.example.com/ref.jpg")
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Resolve() error = %v, want FetchError", err)
	}
	if fe.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", fe.StatusCode)
	}
	if !strings.Contains(fe.Msg, "failed to download reference image") {
		t.Fatalf("msg = %q", fe.Msg)
	}
}
