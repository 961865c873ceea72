// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit keeps a local trail of session lifecycle transitions.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("audit store closed")

const schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	at      INTEGER NOT NULL,
	event   TEXT    NOT NULL,
	seconds INTEGER NOT NULL DEFAULT 0,
	cycle   TEXT    NOT NULL DEFAULT '',
	detail  TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_session_events_at ON session_events(at);
`

// Entry is one audit record.
type Entry struct {
	ID      int64     `json:"id"`
	At      time.Time `json:"at"`
	Event   string    `json:"event"`
	Seconds int       `json:"seconds,omitempty"`
	Cycle   string    `json:"cycle,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the audit database at path.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends e. A zero At is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_events (at, event, seconds, cycle, detail) VALUES (?, ?, ?, ?, ?)`,
		e.At.UnixMilli(), e.Event, e.Seconds, e.Cycle, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, event, seconds, cycle, detail FROM session_events ORDER BY at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &at, &e.Event, &e.Seconds, &e.Cycle, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.At = time.UnixMilli(at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
