package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// The statements below are accepted by both MySQL and SQLite.
const (
	createStateTable = `
		CREATE TABLE IF NOT EXISTS client_state (
			state_key  VARCHAR(191) NOT NULL PRIMARY KEY,
			payload    MEDIUMTEXT   NOT NULL,
			updated_at BIGINT       NOT NULL
		)`
	upsertState = `REPLACE INTO client_state (state_key, payload, updated_at) VALUES (?, ?, ?)`
	selectState = `SELECT payload FROM client_state WHERE state_key = ?`
	deleteState = `DELETE FROM client_state WHERE state_key = ?`
)

// SQLAdapter stores client state in a single table of a MySQL or SQLite
// database.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

func (s *SQLAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectState, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	return payload, nil
}

func (s *SQLAdapter) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, upsertState, key, string(payload), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

func (s *SQLAdapter) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteState, key); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
