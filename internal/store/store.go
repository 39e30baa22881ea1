package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no document exists for the requested session.
var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, table := range []string{"sessions", "context_caches", "minutes"} {
		_, err := s.pool.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				session_id text PRIMARY KEY,
				doc        jsonb NOT NULL,
				updated_at timestamptz NOT NULL DEFAULT now()
			)`, table))
		if err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

// upsertDoc writes a JSON document under the session id, replacing any
// previous version.
func (s *Store) upsertDoc(ctx context.Context, table, sessionID string, doc []byte) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (session_id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, table),
		sessionID, doc,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *Store) getDoc(ctx context.Context, table, sessionID string) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT doc FROM %s WHERE session_id = $1`, table), sessionID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return doc, nil
}
