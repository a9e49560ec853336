// Package archive copies original uploads into durable object storage.
// Archival is best effort: failures are logged and reported, never retried.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"captionsearch/common"
	"captionsearch/config"
)

// ErrArchival wraps any failure to archive an asset.
var ErrArchival = errors.New("archival failed")

// BlobStore is the object storage boundary.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectKey derives the owner-scoped key for an asset.
func ObjectKey(owner, displayName string) string {
	return owner + "/" + displayName
}

// Uploader archives files to a BlobStore.
type Uploader struct {
	store BlobStore
}

// NewUploader wraps store.
func NewUploader(store BlobStore) *Uploader {
	return &Uploader{store: store}
}

// Archive uploads the file at filePath under owner/displayName.
func (u *Uploader) Archive(ctx context.Context, filePath, owner, displayName string) error {
	if err := u.archive(ctx, filePath, owner, displayName); err != nil {
		log.Printf("Warning: archival of %s for %s failed: %v", displayName, owner, err)
		return fmt.Errorf("%w: %v", ErrArchival, err)
	}
	log.Printf("📦 Archived %s", ObjectKey(owner, displayName))
	return nil
}

func (u *Uploader) archive(ctx context.Context, filePath, owner, displayName string) error {
	if owner == "" || displayName == "" {
		return errors.New("owner and display name required")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	ctx, cancel := context.WithTimeout(ctx, config.ArchiveTimeout)
	defer cancel()
	return u.store.Put(ctx, ObjectKey(owner, displayName), f, size, contentType(displayName))
}

// ListFiles returns the archived keys for owner.
func (u *Uploader) ListFiles(ctx context.Context, owner string) ([]string, error) {
	return u.store.List(ctx, owner+"/")
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// S3Store is a BlobStore backed by an S3 bucket, with an optional key prefix.
type S3Store struct {
	client *common.S3
	bucket string
	prefix string
}

// NewS3Store builds an S3-backed BlobStore.
func NewS3Store(client *common.S3, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return s.client.Put(ctx, s.bucket, s.prefix+key, body, size, contentType)
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.client.ListKeys(ctx, s.bucket, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, nil
}

// Ping checks that the bucket behind the store is reachable.
func (s *S3Store) Ping(ctx context.Context) error {
	return s.client.CheckBucket(ctx, s.bucket)
}
