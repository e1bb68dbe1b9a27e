package storage

import (
	"github.com/apibillme/cache"
)

const (
	memoryCapacity  = 65536
	memoryJobPrefix = "job:"
)

// memoryStore is a process-local LRU with TTL. Nothing survives a restart.
type memoryStore struct {
	c cache.Cache
}

func newMemoryStore(opts Options) Store {
	return &memoryStore{c: cache.New(memoryCapacity, cache.WithTTL(opts.RecordTTL))}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) SeenRecord(id string) (bool, error) {
	_, ok := m.c.Get(id)
	return ok, nil
}

func (m *memoryStore) MarkRecord(jobID, id string) error {
	m.c.Set(id, true)
	if jobID != "" {
		m.c.Set(memoryJobPrefix+jobID, id)
	}
	return nil
}

func (m *memoryStore) LastRecord(jobID string) (string, bool, error) {
	v, ok := m.c.Get(memoryJobPrefix + jobID)
	if !ok {
		return "", false, nil
	}
	id, ok := v.(string)
	return id, ok, nil
}
