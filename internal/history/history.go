// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a durable ledger of completed generation runs so
// operators can audit what was produced, under which backend, and where it
// was stored.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Entry is one ledger row: the durable record of a completed run.
type Entry struct {
	RequestID    string    `json:"request_id" yaml:"request_id"`
	Topic        string    `json:"topic" yaml:"topic"`
	Brand        string    `json:"brand" yaml:"brand"`
	StorageKey   string    `json:"storage_key" yaml:"storage_key"`
	Backend      string    `json:"backend" yaml:"backend"`
	FallbackUsed bool      `json:"fallback_used" yaml:"fallback_used"`
	WordCount    int       `json:"word_count" yaml:"word_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Store manages the ledger SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			request_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			brand TEXT,
			storage_key TEXT NOT NULL,
			backend TEXT NOT NULL,
			fallback_used INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts the ledger entry for a completed run.
func (s *Store) Record(ctx context.Context, req *types.ContentRequest, result *types.PipelineResult) error {
	fallback := 0
	if result.FallbackUsed {
		fallback = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
			(request_id, topic, brand, storage_key, backend, fallback_used, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.RequestID, req.Topic, req.Brand, result.StorageKey,
		string(result.Backend), fallback, result.WordCount,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", req.RequestID, err)
	}
	return nil
}

// Recent returns up to limit ledger entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, topic, brand, storage_key, backend, fallback_used, word_count, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fallback int
		var createdAt string
		if err := rows.Scan(&e.RequestID, &e.Topic, &e.Brand, &e.StorageKey,
			&e.Backend, &fallback, &e.WordCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.FallbackUsed = fallback != 0
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes every ledger entry to w as a YAML document, newest
// first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.Recent(ctx, 100000)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing ledger export: %w", err)
	}
	return nil
}
