package handlers

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"venueadmin/internal/domain"
)

type archiveTransport struct {
	responses map[string]int
}

func (t *archiveTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	status, ok := t.responses[req.URL.String()]
	if !ok {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("jpeg bytes")),
	}, nil
}

func TestSectionImagesArchive(t *testing.T) {
	first := *testRecord()
	second := *testRecord()
	second.ID = "img-2"
	second.ImageURL = "https://cdn.test/generated/2-def.jpg"
	images := &fakeImageStore{list: []domain.GeneratedImage{first, second}}

	app := NewApp(zerolog.Nop(), &fakePipeline{}, images, &fakeSectionStore{})
	app.HTTP = &http.Client{Transport: &archiveTransport{}}

	r := chi.NewRouter()
	r.Get("/api/sections/{id}/images/archive", app.SectionImagesArchive)
	req := httptest.NewRequest(http.MethodGet, "/api/sections/sec-1/images/archive", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
}

func TestSectionImagesArchiveSkipsUnreachable(t *testing.T) {
	first := *testRecord()
	second := *testRecord()
	second.ID = "img-2"
	second.ImageURL = "https://cdn.test/generated/2-def.jpg"
	images := &fakeImageStore{list: []domain.GeneratedImage{first, second}}

	app := NewApp(zerolog.Nop(), &fakePipeline{}, images, &fakeSectionStore{})
	app.HTTP = &http.Client{Transport: &archiveTransport{responses: map[string]int{
		second.ImageURL: http.StatusNotFound,
	}}}

	r := chi.NewRouter()
	r.Get("/api/sections/{id}/images/archive", app.SectionImagesArchive)
	req := httptest.NewRequest(http.MethodGet, "/api/sections/sec-1/images/archive", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("entries = %d, want unreachable image skipped", len(zr.File))
	}
}

func TestSectionImagesArchiveEmptySection(t *testing.T) {
	app := NewApp(zerolog.Nop(), &fakePipeline{}, &fakeImageStore{}, &fakeSectionStore{})

	r := chi.NewRouter()
	r.Get("/api/sections/{id}/images/archive", app.SectionImagesArchive)
	req := httptest.NewRequest(http.MethodGet, "/api/sections/sec-9/images/archive", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
