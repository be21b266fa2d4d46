// Package db persists pipeline outputs into a browsable SQLite database,
// one row per gene with its cluster, synteny and proxy annotations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type Store struct {
	sql *sql.DB
}

// Open opens (or creates) the result database at path.
func Open(path string) (*Store, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{sql: handle}, nil
}

func (s *Store) Close() error { return s.sql.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	command    TEXT NOT NULL,
	set_name   TEXT NOT NULL,
	params     TEXT
);
CREATE TABLE IF NOT EXISTS gene_clusters (
	cluster_id INTEGER PRIMARY KEY,
	size       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS genes (
	gene_id       TEXT PRIMARY KEY,
	genome_id     TEXT NOT NULL,
	contig_id     TEXT NOT NULL,
	start_location INTEGER,
	strand        TEXT,
	protein_len   INTEGER,
	cluster_id    INTEGER NOT NULL,
	cluster_size  INTEGER NOT NULL,
	synteny_id    TEXT NOT NULL DEFAULT '0',
	synteny_count INTEGER NOT NULL DEFAULT 0,
	reason        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS genes_by_cluster ON genes(cluster_id);
CREATE INDEX IF NOT EXISTS genes_by_genome ON genes(genome_id);
`

// InitSchema creates the result tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.sql.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RegisterRun records one pipeline invocation under its run ID. An empty
// runID gets a fresh UUID; the recorded ID is returned either way.
func (s *Store) RegisterRun(ctx context.Context, runID, command, setName, params string) (string, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, command, set_name, params) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), command, setName, params)
	if err != nil {
		return "", fmt.Errorf("register run: %w", err)
	}
	return runID, nil
}
