// Package storage remembers which records were already published.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks record fingerprints and the latest fingerprint per job.
type Store interface {
	Close() error
	// SeenRecord reports whether the fingerprint was marked and has not expired.
	SeenRecord(id string) (bool, error)
	// MarkRecord remembers the fingerprint and records it as jobID's latest.
	MarkRecord(jobID, id string) error
	// LastRecord returns the latest fingerprint marked for jobID.
	LastRecord(jobID string) (string, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// Backend names accepted by NewStore.
const (
	TypeNone   = "none"
	TypeBbolt  = "bbolt"
	TypeSQLite = "sqlite"
	TypeMemory = "memory"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBbolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case TypeSQLite, "sqlite3":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path, opts)
	case TypeMemory:
		return newMemoryStore(opts), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) SeenRecord(string) (bool, error)         { return false, nil }
func (noopStore) MarkRecord(string, string) error         { return nil }
func (noopStore) LastRecord(string) (string, bool, error) { return "", false, nil }
