package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store using PostgreSQL (sessions table).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new session record keyed by token hash.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, tokenHash string) (Record, error) {
	rec := Record{
		ID:        ulid.Make().String(),
		TokenHash: tokenHash,
		CreatedAt: now,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token_hash, created_at)
		VALUES ($1, $2, $3)
	`, rec.ID, rec.TokenHash, rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// GetByTokenHash looks up a record by exact hash match.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT id, token_hash, created_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash).Scan(&rec.ID, &rec.TokenHash, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete revokes a single session record (idempotent).
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
