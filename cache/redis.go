package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Backend for deployments where several client processes
// (a bank of departure-board kiosks, say) share one bulk cache. Entries
// carry their own TTL envelope, so no server-side expiry is set and the
// read-time staleness rule stays identical across backends.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects a Backend to the Redis instance at addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "transitmap:",
	}
}

type redisEntry struct {
	StoredAt   time.Time `json:"stored_at"`
	TTLMinutes int       `json:"ttl_minutes"`
	Payload    []byte    `json:"items"`
}

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, err
	}
	return Entry{
		StoredAt: e.StoredAt,
		TTL:      minutesDuration(e.TTLMinutes),
		Payload:  e.Payload,
	}, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, e Entry) error {
	data, err := json.Marshal(redisEntry{
		StoredAt:   e.StoredAt,
		TTLMinutes: int(e.TTL.Minutes()),
		Payload:    e.Payload,
	})
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, data, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
