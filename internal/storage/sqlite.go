//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"supaops/internal/config"
)

//go:embed migrations.sql
var migrations string

type sqliteStore struct {
	db *sql.DB
}

func openSQLiteStore(cfg *config.StorageConfig) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite storage: path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: %w", err)
	}

	busy := config.DurationOrDefault(cfg.BusyTimeout, 5*time.Second)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		filepath.Join(cfg.Path, "supaops.db"), busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite storage: migrate: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) AppendRun(ctx context.Context, e RunEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (job, trigger_by, started_at, duration_ns, attempts, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Job, e.Trigger, e.Started.UnixNano(), int64(e.Duration), e.Attempts, e.Status, nullStr(e.Error))
	if err != nil {
		return fmt.Errorf("sqlite storage: insert run: %w", err)
	}
	return nil
}

func (s *sqliteStore) RecentRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT job, trigger_by, started_at, duration_ns, attempts, status, COALESCE(error, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query runs: %w", err)
	}
	defer rows.Close()

	var out []RunEntry
	for rows.Next() {
		var e RunEntry
		var started, dur int64
		if err := rows.Scan(&e.Job, &e.Trigger, &started, &dur, &e.Attempts, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan run: %w", err)
		}
		e.Started = time.Unix(0, started)
		e.Duration = time.Duration(dur)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func nullStr(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}
