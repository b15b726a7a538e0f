package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// CachedLoader is the read-through path used for full collection loads:
// check the store, fall back to fetch, write back on success. Concurrent
// loads for the same key are coalesced onto a single in-flight fetch, so a
// user toggling a layer twice quickly costs one request, not two.
type CachedLoader struct {
	store *TieredStore
	group singleflight.Group
}

// NewCachedLoader wraps store with in-flight request coalescing.
func NewCachedLoader(store *TieredStore) *CachedLoader {
	return &CachedLoader{store: store}
}

// Load returns the payload for key, fetching it at most once no matter how
// many callers arrive while the fetch is outstanding. A fetch error is
// returned to every waiting caller and nothing is cached.
//
// fetch reports whether its result is cacheable. A partial result (a
// collection walk that stopped early, say) comes back with false: it is
// still returned to every caller for immediate use, but nothing is
// written, so the next Load retries the network instead of serving the
// short result until it expires.
func (l *CachedLoader) Load(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, bool, error)) ([]byte, error) {
	v, err, _ := l.group.Do(key, func() (any, error) {
		if payload, ok := l.store.Read(ctx, key); ok {
			return payload, nil
		}
		payload, cacheable, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			l.store.Write(ctx, key, payload)
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
