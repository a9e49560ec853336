package captioncache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"captionsearch/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS captions (
	owner        TEXT NOT NULL,
	file_hash    TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	entries      TEXT NOT NULL,
	extracted_at TEXT NOT NULL,
	PRIMARY KEY (owner, file_hash)
);`

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, stmt := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA busy_timeout = 5000;", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT owner, file_hash, file_name, entries, extracted_at FROM captions WHERE owner = ? AND file_hash = ?`,
		owner, fileHash)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	return rec, err
}

func (s *SQLiteStore) Put(ctx context.Context, record *types.CaptionRecord) error {
	entries, err := json.Marshal(record.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO captions (owner, file_hash, file_name, entries, extracted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, file_hash) DO UPDATE SET
			file_name = excluded.file_name,
			entries = excluded.entries,
			extracted_at = excluded.extracted_at`,
		record.Owner, record.FileHash, record.FileName, string(entries), record.ExtractedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) List(ctx context.Context, owner string) ([]*types.CaptionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, file_hash, file_name, entries, extracted_at FROM captions WHERE owner = ? ORDER BY file_name, file_hash`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.CaptionRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanRecord(scan func(dest ...any) error) (*types.CaptionRecord, error) {
	var (
		rec         types.CaptionRecord
		entries     string
		extractedAt string
	)
	if err := scan(&rec.Owner, &rec.FileHash, &rec.FileName, &entries, &extractedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(entries), &rec.Entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if extractedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, extractedAt)
		if err != nil {
			return nil, fmt.Errorf("decode extracted_at: %w", err)
		}
		rec.ExtractedAt = t
	}
	return &rec, nil
}
