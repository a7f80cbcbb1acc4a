// Package audit is the optional compliance sink: persisted per-topic,
// per-partition counts of each result code, for operators who need a
// durable record of how many messages were suppressed and why. Grounded
// on the teacher's internal/db/postgres.go (pgxpool connect/ping,
// parameterized upsert, explicit transaction with deferred rollback).
package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists decision counts. A nil *Store is valid and every method
// is then a no-op — audit persistence is optional (spec's map file and
// message-bus wiring are "out of scope (external)"; Postgres is an
// enrichment the ambient stack adds, not a hard dependency).
type Store struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS ppm_decision_counts (
	topic     TEXT NOT NULL,
	partition INT  NOT NULL,
	result    TEXT NOT NULL,
	count     BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (topic, partition, result)
);`

// Connect opens a pooled connection to dsn and ensures the schema
// exists. An empty dsn returns (nil, nil): audit persistence is simply
// disabled.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: initializing schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool. Safe to call on a nil Store.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RecordResult increments the stored count for (topic, partition,
// result) by one, inside its own transaction. Safe to call on a nil
// Store (no-op).
func (s *Store) RecordResult(ctx context.Context, topic string, partition int32, result string) error {
	if s == nil || s.pool == nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ppm_decision_counts (topic, partition, result, count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (topic, partition, result)
		DO UPDATE SET count = ppm_decision_counts.count + 1
	`, topic, partition, result)
	if err != nil {
		return fmt.Errorf("audit: upsert: %w", err)
	}
	return tx.Commit(ctx)
}
