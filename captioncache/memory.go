package captioncache

import (
	"context"
	"sort"
	"sync"

	"captionsearch/types"
)

// MemoryStore is an in-process Store, used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*types.CaptionRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*types.CaptionRecord)}
}

func (m *MemoryStore) Get(_ context.Context, owner, fileHash string) (*types.CaptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[types.RecordKey(owner, fileHash)]
	if !ok {
		return nil, ErrMiss
	}
	return cloneRecord(rec), nil
}

func (m *MemoryStore) Put(_ context.Context, record *types.CaptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Key()] = cloneRecord(record)
	return nil
}

func (m *MemoryStore) List(_ context.Context, owner string) ([]*types.CaptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.CaptionRecord
	for _, rec := range m.records {
		if rec.Owner == owner {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func cloneRecord(rec *types.CaptionRecord) *types.CaptionRecord {
	cp := *rec
	cp.Entries = append([]types.CaptionEntry(nil), rec.Entries...)
	return &cp
}

func sortRecords(recs []*types.CaptionRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].FileName != recs[j].FileName {
			return recs[i].FileName < recs[j].FileName
		}
		return recs[i].FileHash < recs[j].FileHash
	})
}
