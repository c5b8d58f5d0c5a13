package primary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// StoreImpl implements the relational store interfaces over PostgreSQL.
// All SQL sticks to $1 placeholders and ON CONFLICT upserts, which both
// Postgres and the sqlite driver used in tests understand.
type StoreImpl struct {
	db *sql.DB
}

// NewPrimaryStore opens a PostgreSQL connection via the pgx stdlib driver
// and verifies it with a ping.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &StoreImpl{db: db}, nil
}

// NewWithDB wraps an already-open handle. Tests use this with an in-memory
// sqlite database.
func NewWithDB(db *sql.DB) *StoreImpl {
	return &StoreImpl{db: db}
}

func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *StoreImpl) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they do not exist. The DDL here is
// Postgres-flavored; tests create their own sqlite schema.
func (s *StoreImpl) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS movies (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		year INT NOT NULL DEFAULT 0,
		overview TEXT NOT NULL DEFAULT '',
		genres TEXT NOT NULL DEFAULT '',
		imdb_id TEXT,
		mean_sentiment DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (title, year)
	);
	CREATE TABLE IF NOT EXISTS reviews (
		id BIGSERIAL PRIMARY KEY,
		movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		body TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'typed',
		probability DOUBLE PRECISION,
		label TEXT,
		stars INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS verdicts (
		id TEXT PRIMARY KEY,
		movie_id BIGINT NOT NULL UNIQUE REFERENCES movies(id) ON DELETE CASCADE,
		review_count INT NOT NULL,
		positive_count INT NOT NULL,
		mixed_count INT NOT NULL,
		negative_count INT NOT NULL,
		mean_probability DOUBLE PRECISION NOT NULL,
		label TEXT NOT NULL,
		stars INT NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ratings (
		user_id BIGINT NOT NULL,
		movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		rating DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, movie_id)
	);
	CREATE TABLE IF NOT EXISTS background_jobs (
		id BIGSERIAL PRIMARY KEY,
		job_id TEXT NOT NULL UNIQUE,
		task_type TEXT NOT NULL,
		status TEXT NOT NULL,
		movie_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
