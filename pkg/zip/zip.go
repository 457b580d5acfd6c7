// Package zip bundles generated venue images into a single downloadable
// archive for offline review.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Asset is one image destined for the archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets writes every asset into an in-memory zip. Filenames get an
// extension derived from the MIME type and are deduplicated; assets with no
// data are skipped rather than written empty.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int)
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		name := entryName(asset, seen)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create entry %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func entryName(asset Asset, seen map[string]int) string {
	base := strings.TrimSpace(asset.Filename)
	if base == "" {
		base = "image"
	}
	ext := extensionFor(asset.MIME)
	if !strings.HasSuffix(strings.ToLower(base), ext) {
		base += ext
	}
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	trimmed := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%d%s", trimmed, n+1, ext)
}

func extensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
