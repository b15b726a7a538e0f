package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Entry is the persisted form of one cached collection. Payload holds the
// JSON-encoded items; entries are always replaced wholesale, never patched.
type Entry struct {
	StoredAt time.Time
	TTL      time.Duration
	Payload  []byte
}

// Backend is a dumb byte store for cache entries. A miss is (Entry{},
// false, nil); errors are reserved for the storage layer itself and are
// swallowed by TieredStore.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// TieredStore routes each key to its fixed tier and enforces the TTL
// envelope on read.
type TieredStore struct {
	small    Backend
	bulk     Backend
	bulkKeys map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewTieredStore builds a store where the named bulkKeys are served by the
// bulk backend and everything else by the small one.
func NewTieredStore(small, bulk Backend, ttl time.Duration, bulkKeys []string, log zerolog.Logger) *TieredStore {
	bk := make(map[string]struct{}, len(bulkKeys))
	for _, k := range bulkKeys {
		bk[k] = struct{}{}
	}
	return &TieredStore{
		small:    small,
		bulk:     bulk,
		bulkKeys: bk,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (s *TieredStore) backendFor(key string) Backend {
	if _, ok := s.bulkKeys[key]; ok {
		return s.bulk
	}
	return s.small
}

// Read returns the cached payload for key, or false on any miss: absent
// entry, stale entry (evicted here) or storage failure.
func (s *TieredStore) Read(ctx context.Context, key string) ([]byte, bool) {
	b := s.backendFor(key)
	e, ok, err := b.Get(ctx, key)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache read degraded to miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.StoredAt) > e.TTL {
		if err := b.Delete(ctx, key); err != nil {
			s.log.Debug().Err(err).Str("key", key).Msg("stale entry eviction failed")
		}
		return nil, false
	}
	return e.Payload, true
}

// Write replaces the entry for key. Storage failures are logged and
// dropped; the caller keeps using the in-memory data either way.
func (s *TieredStore) Write(ctx context.Context, key string, payload []byte) {
	e := Entry{StoredAt: s.now(), TTL: s.ttl, Payload: payload}
	if err := s.backendFor(key).Put(ctx, key, e); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache write dropped")
	}
}

// Invalidate removes the entry for key, if any.
func (s *TieredStore) Invalidate(ctx context.Context, key string) {
	if err := s.backendFor(key).Delete(ctx, key); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
