package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps snapshots in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed snapshot store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts the user's snapshot.
func (s *PostgresStore) Save(ctx context.Context, userID string, snapshot []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO sessions (user_id, snapshot, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		userID, snapshot, time.Now().UTC())
	return err
}

// Load fetches the user's snapshot.
func (s *PostgresStore) Load(ctx context.Context, userID string) ([]byte, error) {
	var snapshot []byte
	err := s.db.QueryRow(ctx, `SELECT snapshot FROM sessions WHERE user_id = $1`, userID).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Delete removes the user's snapshot if present.
func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}
