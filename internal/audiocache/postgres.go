package audiocache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists cached audio blobs in PostgreSQL. The table is
// namespaced apart from the app's transactional data on purpose.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS voice_audio_cache (
			key TEXT PRIMARY KEY,
			blob BYTEA NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (CachedAudio, error) {
	var entry CachedAudio
	entry.Key = key
	err := s.pool.QueryRow(ctx,
		`SELECT blob, stored_at FROM voice_audio_cache WHERE key=$1`,
		key,
	).Scan(&entry.Blob, &entry.StoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CachedAudio{}, ErrNotFound
	}
	if err != nil {
		return CachedAudio{}, fmt.Errorf("get cached audio: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, blob []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO voice_audio_cache (key, blob, stored_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, stored_at = EXCLUDED.stored_at`,
		key,
		blob,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put cached audio: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM voice_audio_cache`); err != nil {
		return fmt.Errorf("clear audio cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
