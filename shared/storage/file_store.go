package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"cinemai/shared/logging"
)

const fileStoreName = "cinemai_state.json"

// FileStore persists all keys as one JSON object in a file under dataDir.
type FileStore struct {
	filePath string
	values   map[string]string
	mu       sync.RWMutex
}

// NewFileStore creates a file store, loading any existing state.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		filePath: filepath.Join(dataDir, fileStoreName),
		values:   make(map[string]string),
	}
	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load state file: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.values[key] = value
	return fs.save()
}

func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.values[key]; !ok {
		return nil
	}
	delete(fs.values, key)
	return fs.save()
}

func (fs *FileStore) Close() error { return nil }

// load reads the state file; a missing file is an empty store. A corrupt
// file is moved aside to <name>.corrupt and the store starts empty.
func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open state file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &fs.values); err != nil {
		fs.values = make(map[string]string)
		log := logging.Warn().Err(fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)).Str("path", fs.filePath)
		if rerr := os.Rename(fs.filePath, fs.filePath+".corrupt"); rerr != nil {
			log = log.AnErr("rename_error", rerr)
		}
		log.Msg("discarding state file, starting empty")
	}
	return nil
}

// save writes through a temp file so a crash never leaves half a file behind.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}
