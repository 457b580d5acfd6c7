// Package storage persists processed assets to durable object storage and
// hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Key prefixes inside the bucket.
const (
	CategoryGenerated = "generated"
	CategorySections  = "sections"
	CategoryBacklog   = "backlog"
)

// CacheControl is the one-year cache directive applied to every object.
const CacheControl = "public, max-age=31536000"

// Store writes an asset under a collision-resistant key and returns its
// public URL.
type Store interface {
	Upload(ctx context.Context, data []byte, category string) (string, error)
}

// ObjectKey builds "{category}/{millisecond-timestamp}-{short-suffix}.jpg".
// The timestamp plus random suffix makes collisions practically impossible
// without a lookup.
func ObjectKey(category string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s.jpg", category, time.Now().UnixMilli(), suffix)
}
