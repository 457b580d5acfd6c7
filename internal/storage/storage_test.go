package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var keyPattern = regexp.MustCompile(`^generated/\d{13}-[0-9a-f]{8}\.jpg$`)

func TestObjectKeyFormat(t *testing.T) {
	key := ObjectKey(CategoryGenerated)
	if !keyPattern.MatchString(key) {
		t.Fatalf("ObjectKey() = %q, want {category}/{unix-millis}-{8 hex}.jpg", key)
	}
}

func TestObjectKeyIsCollisionResistant(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key := ObjectKey(CategoryBacklog)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = struct{}{}
	}
}

func TestFileStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	url, err := store.Upload(context.Background(), []byte("jpeg bytes"), CategoryGenerated)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/static/generated/") {
		t.Fatalf("url = %q, want base url prefix", url)
	}

	key := strings.TrimPrefix(url, "http://localhost:8080/static/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Fatalf("stored data = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.jpg", []byte("x")); err == nil {
		t.Fatal("Write() accepted a traversal key")
	}
}

func TestFileStoreRequiresBasePath(t *testing.T) {
	if _, err := NewFileStore("  ", "http://localhost"); err == nil {
		t.Fatal("NewFileStore() accepted an empty base path")
	}
}

func TestNewS3StoreRequiresCredential(t *testing.T) {
	_, err := NewS3Store(S3Options{
		Endpoint: "https://r2.test",
		Region:   "auto",
		Bucket:   "images",
	})
	if err == nil {
		t.Fatal("NewS3Store() accepted missing credentials")
	}
	if !strings.Contains(err.Error(), "credential") {
		t.Fatalf("error = %v, want credential message", err)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(S3Options{
		AccessKey: "ak",
		SecretKey: "sk",
	})
	if err == nil {
		t.Fatal("NewS3Store() accepted missing bucket")
	}
}
