package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GobStore persists one gob-encoded file per key under a directory. It
// backs the bulk tier, where a single entry (all route shapes, say) can be
// several megabytes and rewriting a shared JSON file per write would hurt.
type GobStore struct {
	dir string
}

// NewGobStore creates a store writing <dir>/<key>.gob files. The directory
// is created on first write.
func NewGobStore(dir string) *GobStore {
	return &GobStore{dir: dir}
}

type gobEntry struct {
	StoredAtUnixMS int64
	TTLMinutes     int
	Payload        []byte
}

func (g *GobStore) pathFor(key string) string {
	// Keys are internal identifiers, but keep the filename safe anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(g.dir, safe+".gob")
}

func (g *GobStore) Get(_ context.Context, key string) (Entry, bool, error) {
	data, err := os.ReadFile(g.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e gobEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return Entry{
		StoredAt: unixMSTime(e.StoredAtUnixMS),
		TTL:      minutesDuration(e.TTLMinutes),
		Payload:  e.Payload,
	}, true, nil
}

func (g *GobStore) Put(_ context.Context, key string, e Entry) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobEntry{
		StoredAtUnixMS: e.StoredAt.UnixMilli(),
		TTLMinutes:     int(e.TTL.Minutes()),
		Payload:        e.Payload,
	}); err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	return os.WriteFile(g.pathFor(key), buf.Bytes(), 0o644)
}

func (g *GobStore) Delete(_ context.Context, key string) error {
	err := os.Remove(g.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
