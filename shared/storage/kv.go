// Package storage holds the key/value persistence collaborator and the
// stores built on top of it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrPersistenceCorrupt marks persisted content that could not be decoded.
	ErrPersistenceCorrupt = errors.New("persisted content is corrupt")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// KeyValue is the persistence contract. Get reports ok=false for a missing key.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store for driver under the data directory path. A sqlite
// path with a file extension is used as the database file itself.
func Open(driver, path string) (KeyValue, error) {
	switch strings.ToLower(driver) {
	case "", "file":
		return NewFileStore(path)
	case "badger":
		if path != "" {
			path = filepath.Join(path, "badger")
		}
		return NewBadgerStore(path)
	case "sqlite":
		if path != "" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "cinemai.db")
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
