package transitmap

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/transit-map/cache"
)

const keyQueryHistory = "query-history"

// QueryRecord is one executed spatial query, kept so a user can rerun
// recent lookups.
type QueryRecord struct {
	ID         uuid.UUID         `json:"id"`
	Kind       string            `json:"kind"`
	Parameters map[string]string `json:"parameters"`
	PointCount int               `json:"point_count"`
	LineCount  int               `json:"line_count"`
	ExecutedAt time.Time         `json:"executed_at"`
}

// History is the session's query log, persisted through the small cache
// tier. Persistence is fail-soft: a history that cannot be written or
// read back is simply absent.
type History struct {
	mu      sync.Mutex
	store   *cache.TieredStore
	records []QueryRecord
	loaded  bool
}

// NewHistory creates a history persisting through store.
func NewHistory(store *cache.TieredStore) *History {
	return &History{store: store}
}

func (h *History) loadLocked(ctx context.Context) {
	if h.loaded {
		return
	}
	h.loaded = true
	payload, ok := h.store.Read(ctx, keyQueryHistory)
	if !ok {
		return
	}
	var records []QueryRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return
	}
	h.records = records
}

// Record appends one executed query and persists the log.
func (h *History) Record(ctx context.Context, kind string, params map[string]string, points, lines int) QueryRecord {
	rec := QueryRecord{
		ID:         uuid.New(),
		Kind:       kind,
		Parameters: params,
		PointCount: points,
		LineCount:  lines,
		ExecutedAt: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loadLocked(ctx)
	h.records = append(h.records, rec)
	if payload, err := json.Marshal(h.records); err == nil {
		h.store.Write(ctx, keyQueryHistory, payload)
	}
	return rec
}

// Records returns the saved queries, oldest first.
func (h *History) Records(ctx context.Context) []QueryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loadLocked(ctx)
	out := make([]QueryRecord, len(h.records))
	copy(out, h.records)
	return out
}
