package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id     TEXT PRIMARY KEY,
	expiry INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS jobs (
	job_id    TEXT PRIMARY KEY,
	record_id TEXT NOT NULL
);`

// sqliteStore keeps the same layout as the bbolt store in two tables.
type sqliteStore struct {
	db              *sql.DB
	recordTTL       time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

func openSQLite(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=1000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return &sqliteStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
		lastCleanup:     time.Now(),
		now:             time.Now,
	}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) SeenRecord(id string) (bool, error) {
	now := s.now()
	if err := s.maybeDeleteExpired(now); err != nil {
		return false, err
	}

	var expiry int64
	err := s.db.QueryRow("SELECT expiry FROM records WHERE id = ?", id).Scan(&expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup record: %w", err)
	}
	return expiry > now.Unix(), nil
}

func (s *sqliteStore) MarkRecord(jobID, id string) error {
	now := s.now()
	if err := s.maybeDeleteExpired(now); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		"INSERT INTO records (id, expiry) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET expiry = excluded.expiry",
		id, now.Add(s.recordTTL).Unix(),
	); err != nil {
		return fmt.Errorf("mark record: %w", err)
	}
	if jobID != "" {
		if _, err := tx.Exec(
			"INSERT INTO jobs (job_id, record_id) VALUES (?, ?) ON CONFLICT(job_id) DO UPDATE SET record_id = excluded.record_id",
			jobID, id,
		); err != nil {
			return fmt.Errorf("mark job: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LastRecord(jobID string) (string, bool, error) {
	var id string
	err := s.db.QueryRow("SELECT record_id FROM jobs WHERE job_id = ?", jobID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup job: %w", err)
	}
	return id, true, nil
}

// maybeDeleteExpired runs at most once per cleanup interval. The single
// connection serializes callers.
func (s *sqliteStore) maybeDeleteExpired(now time.Time) error {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return nil
	}
	if _, err := s.db.Exec("DELETE FROM records WHERE expiry <= ?", now.Unix()); err != nil {
		return fmt.Errorf("delete expired records: %w", err)
	}
	s.lastCleanup = now
	return nil
}
