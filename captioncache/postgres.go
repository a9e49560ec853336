package captioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"captionsearch/types"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS captions (
	owner        TEXT NOT NULL,
	file_hash    TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	entries      JSONB NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (owner, file_hash)
)`

// PostgresStore persists records in a shared Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dbURL and ensures the captions table exists.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres cache backend")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create captions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Get(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT owner, file_hash, file_name, entries, extracted_at FROM captions WHERE owner = $1 AND file_hash = $2`,
		owner, fileHash)
	rec, err := scanPostgresRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	return rec, err
}

func (p *PostgresStore) Put(ctx context.Context, record *types.CaptionRecord) error {
	entries, err := json.Marshal(record.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO captions (owner, file_hash, file_name, entries, extracted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, file_hash) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			entries = EXCLUDED.entries,
			extracted_at = EXCLUDED.extracted_at`,
		record.Owner, record.FileHash, record.FileName, entries, record.ExtractedAt)
	return err
}

func (p *PostgresStore) List(ctx context.Context, owner string) ([]*types.CaptionRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT owner, file_hash, file_name, entries, extracted_at FROM captions WHERE owner = $1 ORDER BY file_name, file_hash`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.CaptionRecord
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanPostgresRecord(row pgx.Row) (*types.CaptionRecord, error) {
	var (
		rec     types.CaptionRecord
		entries []byte
	)
	if err := row.Scan(&rec.Owner, &rec.FileHash, &rec.FileName, &entries, &rec.ExtractedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entries, &rec.Entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return &rec, nil
}
