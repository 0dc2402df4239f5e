// Package store archives completed scout runs in sqlite. Each row is one
// run: the brief text plus the post payload as an opaque JSON blob. The
// archive backs --save and the history command; fetching never reads it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Run is one archived pipeline run.
type Run struct {
	ID            int64
	Topic         string
	Sources       []string
	LookbackHours int
	TotalPosts    int
	Payload       string
	Brief         string
	CreatedAt     time.Time
}

// RunInput holds the fields for a new archive row.
type RunInput struct {
	Topic         string
	Sources       []string
	LookbackHours int
	TotalPosts    int
	Payload       string
	Brief         string
	CreatedAt     time.Time
}

// Open opens (and if needed creates) the archive at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertRun archives a completed run and returns its row ID.
func (s *Store) InsertRun(ctx context.Context, in RunInput) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if in.CreatedAt.IsZero() {
		return 0, errors.New("created_at is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (topic, sources, lookback_hours, total_posts, payload, brief, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Topic,
		strings.Join(in.Sources, ","),
		in.LookbackHours,
		in.TotalPosts,
		in.Payload,
		in.Brief,
		in.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first, without payloads.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if limit < 1 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, sources, lookback_hours, total_posts, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var sources, createdAt string
		if err := rows.Scan(&r.ID, &r.Topic, &sources, &r.LookbackHours, &r.TotalPosts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sources != "" {
			r.Sources = strings.Split(sources, ",")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run including its brief and payload.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}

	var r Run
	var sources, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, sources, lookback_hours, total_posts, payload, brief, created_at
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Topic, &sources, &r.LookbackHours, &r.TotalPosts, &r.Payload, &r.Brief, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if sources != "" {
		r.Sources = strings.Split(sources, ",")
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}
