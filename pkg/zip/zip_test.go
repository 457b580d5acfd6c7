package zip

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	data, err := ArchiveAssets([]Asset{
		{Filename: "front-center", MIME: "image/jpeg", Data: []byte("aaa")},
		{Filename: "front-center", MIME: "image/jpeg", Data: []byte("bbb")},
		{Filename: "pit", MIME: "image/png", Data: []byte("ccc")},
		{Filename: "empty", MIME: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("ArchiveAssets() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"front-center.jpg", "front-center-2.jpg", "pit.png"} {
		if !names[want] {
			t.Errorf("archive missing %q, has %v", want, names)
		}
	}
	if len(zr.File) != 3 {
		t.Fatalf("entries = %d, want empty asset skipped", len(zr.File))
	}
}

func TestArchiveAssetsEmptyInput(t *testing.T) {
	data, err := ArchiveAssets(nil)
	if err != nil {
		t.Fatalf("ArchiveAssets() error = %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive is invalid: %v", err)
	}
}
