package captioncache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"captionsearch/types"
)

type brokenStore struct {
	*MemoryStore
	getErr error
	putErr error
}

func (b *brokenStore) Get(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.MemoryStore.Get(ctx, owner, fileHash)
}

func (b *brokenStore) Put(ctx context.Context, rec *types.CaptionRecord) error {
	if b.putErr != nil {
		return b.putErr
	}
	return b.MemoryStore.Put(ctx, rec)
}

// corruptStore hands back a record whose hash does not match the key.
type corruptStore struct{}

func (corruptStore) Get(context.Context, string, string) (*types.CaptionRecord, error) {
	return &types.CaptionRecord{Owner: "alice", FileHash: "partial"}, nil
}

func (corruptStore) Put(context.Context, *types.CaptionRecord) error { return nil }

func (corruptStore) List(context.Context, string) ([]*types.CaptionRecord, error) { return nil, nil }

func (corruptStore) Close() error { return nil }

func sampleRecord(owner, hash, name string) *types.CaptionRecord {
	return &types.CaptionRecord{
		Owner:       owner,
		FileHash:    hash,
		FileName:    name,
		ExtractedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Entries: []types.CaptionEntry{
			{Index: 1, StartMS: 1000, EndMS: 2000, Text: "Hello World"},
			{Index: 2, StartMS: 2500, EndMS: 4000, Position: "X1:1", Text: "two\nlines"},
		},
	}
}

// exerciseStore runs the shared Store contract against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "alice", "h1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty store = %v; want ErrMiss", err)
	}

	rec := sampleRecord("alice", "h1", "movie.ts")
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, err := store.Get(ctx, "alice", "h1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FileName != "movie.ts" || len(got.Entries) != 2 || got.Entries[1].Text != "two\nlines" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.ExtractedAt.Equal(rec.ExtractedAt) {
		t.Fatalf("ExtractedAt = %v; want %v", got.ExtractedAt, rec.ExtractedAt)
	}

	// same key, other owner: isolated namespace
	if _, err := store.Get(ctx, "bob", "h1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("bob should not see alice's record, got %v", err)
	}

	// last writer wins
	if err := store.Put(ctx, sampleRecord("alice", "h1", "renamed.ts")); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get(ctx, "alice", "h1")
	if err != nil || got.FileName != "renamed.ts" {
		t.Fatalf("overwrite not applied: %+v, %v", got, err)
	}

	if err := store.Put(ctx, sampleRecord("alice", "h2", "another.ts")); err != nil {
		t.Fatal(err)
	}
	list, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].FileName != "another.ts" || list[1].FileName != "renamed.ts" {
		t.Fatalf("unexpected List result: %+v", list)
	}
}

func exerciseConcurrentPuts(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash := fmt.Sprintf("hash-%02d", i)
			if err := store.Put(ctx, sampleRecord("carol", hash, hash+".ts")); err != nil {
				t.Errorf("Put %s: %v", hash, err)
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < 16; i++ {
		hash := fmt.Sprintf("hash-%02d", i)
		rec, err := store.Get(ctx, "carol", hash)
		if err != nil || rec.FileHash != hash {
			t.Fatalf("record %s missing after concurrent puts: %+v, %v", hash, rec, err)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
	exerciseConcurrentPuts(t, NewMemoryStore())
}

func TestCacheLookupHitAndMiss(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := context.Background()

	if _, ok := c.Lookup(ctx, "alice", "h1"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Store(ctx, sampleRecord("alice", "h1", "a.ts")); err != nil {
		t.Fatal(err)
	}
	rec, ok := c.Lookup(ctx, "alice", "h1")
	if !ok || rec.FileName != "a.ts" {
		t.Fatalf("expected hit, got %+v %v", rec, ok)
	}
}

func TestCacheLookupMismatchIsMiss(t *testing.T) {
	c := New(corruptStore{})
	if _, ok := c.Lookup(context.Background(), "alice", "h1"); ok {
		t.Fatal("record with mismatched hash must be treated as a miss")
	}
}

func TestCacheDegradesWhenUnavailable(t *testing.T) {
	store := &brokenStore{
		MemoryStore: NewMemoryStore(),
		getErr:      errors.New("connection refused"),
		putErr:      errors.New("connection refused"),
	}
	c := New(store)
	ctx := context.Background()

	if _, ok := c.Lookup(ctx, "alice", "h1"); ok {
		t.Fatal("unavailable lookup must degrade to a miss")
	}
	err := c.Store(ctx, sampleRecord("alice", "h1", "a.ts"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Store error = %v; want ErrUnavailable", err)
	}
}

func TestCacheStoreRejectsAnonymousRecord(t *testing.T) {
	c := New(NewMemoryStore())
	if err := c.Store(context.Background(), &types.CaptionRecord{FileHash: "h"}); err == nil {
		t.Fatal("expected error for record without owner")
	}
}
