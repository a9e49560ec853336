// Package captioncache maps (owner, fingerprint) to extracted caption records so
// identical content is never decoded twice for the same owner.
package captioncache

import (
	"context"
	"errors"
	"fmt"
	"log"

	"captionsearch/types"
)

var (
	// ErrMiss is returned by a Store when no record exists for the key.
	ErrMiss = errors.New("caption cache miss")
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("caption cache unavailable")
)

// Store is a point get/put persistence backend keyed by (owner, fileHash).
// Put overwrites any existing record for the same key.
type Store interface {
	Get(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, error)
	Put(ctx context.Context, record *types.CaptionRecord) error
	List(ctx context.Context, owner string) ([]*types.CaptionRecord, error)
	Close() error
}

// Cache wraps a Store with the degraded-mode rules of the extraction pipeline:
// backend errors on lookup become misses, and store failures are only logged.
type Cache struct {
	store Store
}

// New wraps store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Lookup returns the canonical record for (owner, fileHash), or false.
func (c *Cache) Lookup(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, bool) {
	rec, err := c.store.Get(ctx, owner, fileHash)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("Warning: caption cache lookup failed for %s/%s, treating as miss: %v", owner, short(fileHash), err)
		}
		return nil, false
	}
	// A record whose hash disagrees with its key is partial or corrupt.
	if rec == nil || rec.FileHash != fileHash || rec.Owner != owner {
		log.Printf("Warning: caption cache returned mismatched record for %s/%s, re-extracting", owner, short(fileHash))
		return nil, false
	}
	return rec, true
}

// Store writes record. Failures are logged and returned wrapped in ErrUnavailable;
// callers are expected to carry on without the dedup benefit.
func (c *Cache) Store(ctx context.Context, record *types.CaptionRecord) error {
	if record == nil || record.Owner == "" || record.FileHash == "" {
		return errors.New("caption record requires owner and file hash")
	}
	if err := c.store.Put(ctx, record); err != nil {
		log.Printf("Warning: failed to store captions for %s/%s: %v", record.Owner, short(record.FileHash), err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// List returns every record stored for owner.
func (c *Cache) List(ctx context.Context, owner string) ([]*types.CaptionRecord, error) {
	recs, err := c.store.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return recs, nil
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.store.Close()
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
