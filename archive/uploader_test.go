package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type downStore struct{}

func (downStore) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("storage unavailable")
}

func (downStore) List(context.Context, string) ([]string, error) { return nil, nil }

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArchiveStoresUnderOwnerKey(t *testing.T) {
	store := NewMemoryStore()
	u := NewUploader(store)
	path := writeAsset(t, "upload.ts", "media bytes")

	if err := u.Archive(context.Background(), path, "alice@example.com", "movie.ts"); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	data, ok := store.Object("alice@example.com/movie.ts")
	if !ok || string(data) != "media bytes" {
		t.Fatalf("object not stored: %q %v", data, ok)
	}

	keys, err := u.ListFiles(context.Background(), "alice@example.com")
	if err != nil || len(keys) != 1 || keys[0] != "alice@example.com/movie.ts" {
		t.Fatalf("ListFiles = %v, %v", keys, err)
	}
	if keys, _ := u.ListFiles(context.Background(), "alice"); len(keys) != 0 {
		t.Fatalf("prefix listing leaked across owners: %v", keys)
	}
}

func TestArchiveFailuresAreReported(t *testing.T) {
	path := writeAsset(t, "upload.ts", "x")
	cases := []struct {
		name  string
		store BlobStore
		path  string
		owner string
	}{
		{"storage down", downStore{}, path, "alice"},
		{"missing file", NewMemoryStore(), filepath.Join(t.TempDir(), "gone.ts"), "alice"},
		{"no owner", NewMemoryStore(), path, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := NewUploader(c.store).Archive(context.Background(), c.path, c.owner, "movie.ts")
			if !errors.Is(err, ErrArchival) {
				t.Fatalf("expected ErrArchival, got %v", err)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	if ct := contentType("clip.unknownext"); ct != "application/octet-stream" {
		t.Fatalf("contentType fallback = %q", ct)
	}
}
