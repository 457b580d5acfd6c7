package genimage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"venueadmin/internal/domain"
)

// ReferenceResolver downloads reference images for providers that need the
// bytes inline. Providers that accept a remote URL directly never call it;
// resolution is lazy per provider, not eager per request.
type ReferenceResolver struct {
	httpClient *http.Client
}

// NewReferenceResolver constructs a resolver with an optional HTTP client.
func NewReferenceResolver(httpClient *http.Client) *ReferenceResolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ReferenceResolver{httpClient: httpClient}
}

// Resolve fetches the image at url and returns its raw bytes.
func (r *ReferenceResolver) Resolve(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("invalid reference url: %v", err)}
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("failed to download reference image: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Msg:        "failed to download reference image",
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Msg: fmt.Sprintf("read reference image: %v", err)}
	}
	return data, nil
}
