package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps all entries in one small JSON file. It backs the small
// tier: compact entity lists that should survive restarts but are cheap to
// rebuild. The whole file is re-read on every access so separate processes
// sharing the path see each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileEntry struct {
	StoredAt   time.Time       `json:"stored_at"`
	TTLMinutes int             `json:"ttl_minutes"`
	Payload    json.RawMessage `json:"items"`
}

// NewFileStore creates a store persisting to path. The file is created on
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]fileEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := map[string]fileEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *FileStore) save(entries map[string]fileEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0o644)
}

func (f *FileStore) Get(_ context.Context, key string) (Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{
		StoredAt: e.StoredAt,
		TTL:      time.Duration(e.TTLMinutes) * time.Minute,
		Payload:  []byte(e.Payload),
	}, true, nil
}

func (f *FileStore) Put(_ context.Context, key string, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		// A corrupted file must not wedge the cache forever; start over.
		entries = map[string]fileEntry{}
	}
	entries[key] = fileEntry{
		StoredAt:   e.StoredAt,
		TTLMinutes: int(e.TTL / time.Minute),
		Payload:    json.RawMessage(e.Payload),
	}
	return f.save(entries)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.save(entries)
}
