package types

import (
	"fmt"
	"time"
)

// CaptionEntry is a single subtitle unit as emitted by the decoder.
type CaptionEntry struct {
	Index    int    `json:"index"`
	StartMS  int64  `json:"start_ms"`
	EndMS    int64  `json:"end_ms"`
	Position string `json:"position,omitempty"`
	Text     string `json:"text"`
}

// Start returns the entry's start offset as a duration.
func (e CaptionEntry) Start() time.Duration { return time.Duration(e.StartMS) * time.Millisecond }

// End returns the entry's end offset as a duration.
func (e CaptionEntry) End() time.Duration { return time.Duration(e.EndMS) * time.Millisecond }

// CaptionRecord is the unit of cache and storage. Identity is (Owner, FileHash);
// FileName is display-only.
type CaptionRecord struct {
	Owner       string         `json:"owner"`
	FileHash    string         `json:"file_hash"`
	FileName    string         `json:"file_name"`
	Entries     []CaptionEntry `json:"entries"`
	ExtractedAt time.Time      `json:"extracted_at"`
}

// Key returns the cache identity of the record.
func (r *CaptionRecord) Key() string {
	return RecordKey(r.Owner, r.FileHash)
}

// RecordKey builds the canonical (owner, fingerprint) key.
func RecordKey(owner, fileHash string) string {
	return fmt.Sprintf("%s|%s", owner, fileHash)
}

// FormatTimestamp renders milliseconds in the SRT "HH:MM:SS,mmm" form.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
