package transitmap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-map/cache"
	"github.com/theoremus-urban-solutions/transit-map/config"
	"github.com/theoremus-urban-solutions/transit-map/overlay"
	"github.com/theoremus-urban-solutions/transit-map/realtime"
	"github.com/theoremus-urban-solutions/transit-map/transit"
)

// Overlay buckets the session maintains. Route geometries are split into
// one bucket per mode so each mode can be toggled on its own.
const (
	BucketStops        overlay.BucketID = "stops"
	BucketQueryResults overlay.BucketID = "query-results"
	BucketVehicles     overlay.BucketID = "vehicles"
)

// Cache keys for the full collections.
const (
	keyStops  = "stops"
	keyShapes = "shapes"
)

// Session ties the pieces together: the API client, the tiered cache,
// the per-entity detail loader, the overlay synchronizer and the
// optional realtime feed. One Session serves one map view.
type Session struct {
	client  *transit.Client
	details *transit.DetailLoader
	store   *cache.TieredStore
	loader  *cache.CachedLoader
	overlay *overlay.Synchronizer
	feed    *realtime.Feed
	history *History
	redis   *cache.RedisStore
	log     zerolog.Logger
}

// NewSession wires a session from configuration. renderer may be nil for
// headless use. The bulk cache tier lives in Redis when cfg names an
// address and on local gob files otherwise.
func NewSession(cfg config.Config, renderer overlay.Renderer, log zerolog.Logger) *Session {
	timeout := time.Duration(cfg.API.TimeoutMS) * time.Millisecond
	client := transit.NewClient(cfg.API.BaseURL, timeout, cfg.API.PageSize, log)

	small := cache.NewFileStore(cfg.Cache.SmallPath)
	var bulk cache.Backend
	var redisStore *cache.RedisStore
	if cfg.Cache.RedisAddr != "" {
		redisStore = cache.NewRedisStore(cfg.Cache.RedisAddr)
		bulk = redisStore
	} else {
		bulk = cache.NewGobStore(cfg.Cache.BulkDir)
	}
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	store := cache.NewTieredStore(small, bulk, ttl, []string{keyShapes}, log)

	return &Session{
		client:  client,
		details: transit.NewDetailLoader(client),
		store:   store,
		loader:  cache.NewCachedLoader(store),
		overlay: overlay.NewSynchronizer(renderer, log),
		feed:    realtime.NewFeed(cfg.Realtime.VehiclePositionsURL, timeout, log),
		history: NewHistory(store),
		redis:   redisStore,
		log:     log,
	}
}

// Close releases resources held by the session.
func (s *Session) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// LoadStops brings the full stop collection onto the map, from cache
// when fresh and from the API otherwise. It returns the number of stops
// newly added to the stops bucket, so a repeated call returns zero. A
// walk cut short by a server failure still renders what arrived, but
// only a complete collection is cached, so the next load refetches.
func (s *Session) LoadStops(ctx context.Context) (int, error) {
	payload, err := s.loader.Load(ctx, keyStops, func(ctx context.Context) ([]byte, bool, error) {
		stops, complete := s.client.FetchAllStops(ctx)
		data, err := json.Marshal(stops)
		return data, complete, err
	})
	if err != nil {
		return 0, err
	}
	var stops []transit.Stop
	if err := json.Unmarshal(payload, &stops); err != nil {
		// A payload we wrote but cannot read back is poison; drop it.
		s.store.Invalidate(ctx, keyStops)
		return 0, fmt.Errorf("failed to decode cached stops: %w", err)
	}
	added := s.overlay.MaterializeInto(BucketStops, stopFeatures(stops))
	s.log.Info().Int("stops", len(stops)).Int("added", added).Msg("stops loaded")
	return added, nil
}

// LoadShapes brings the full route geometry collection onto the map.
// Shapes land in per-mode buckets ("shapes-bus", "shapes-tram", ...),
// keyed by the route's GTFS route_type.
func (s *Session) LoadShapes(ctx context.Context) (int, error) {
	payload, err := s.loader.Load(ctx, keyShapes, func(ctx context.Context) ([]byte, bool, error) {
		shapes, complete := s.client.FetchAllShapes(ctx)
		data, err := json.Marshal(shapes)
		return data, complete, err
	})
	if err != nil {
		return 0, err
	}
	var shapes []transit.RouteShape
	if err := json.Unmarshal(payload, &shapes); err != nil {
		s.store.Invalidate(ctx, keyShapes)
		return 0, fmt.Errorf("failed to decode cached shapes: %w", err)
	}
	added := s.overlay.Materialize(shapeFeatures(shapes), func(f overlay.Feature) overlay.BucketID {
		rt, _ := f.Properties["route_type"].(string)
		return ShapeBucket(rt)
	})
	s.log.Info().Int("shapes", len(shapes)).Int("added", added).Msg("shapes loaded")
	return added, nil
}

// ShapeBucket maps a GTFS route_type to the overlay bucket its
// geometries live in.
func ShapeBucket(routeType string) overlay.BucketID {
	switch routeType {
	case "0":
		return "shapes-tram"
	case "1":
		return "shapes-subway"
	case "2":
		return "shapes-rail"
	case "3":
		return "shapes-bus"
	case "4":
		return "shapes-ferry"
	default:
		return "shapes-other"
	}
}

// Schedules returns the trip schedules for a stop, memoized for the life
// of the session.
func (s *Session) Schedules(ctx context.Context, stopID string) []transit.ScheduleEntry {
	return s.details.Schedules(ctx, stopID)
}

// Trips returns the trips running over a shape, memoized for the life of
// the session.
func (s *Session) Trips(ctx context.Context, shapeID string) []transit.TripDetail {
	return s.details.Trips(ctx, shapeID)
}

// StopsOnRoute lists the stops a route visits, in order. An unknown
// route yields transit.ErrNotFound.
func (s *Session) StopsOnRoute(ctx context.Context, routeID string) (transit.RouteStops, error) {
	return s.client.StopsOnRoute(ctx, routeID)
}

// RefreshVehicles replaces the vehicles bucket with the feed's current
// positions. Each refresh is a full snapshot, so the bucket is cleared
// first. Without a configured feed it is a no-op.
func (s *Session) RefreshVehicles(ctx context.Context) (int, error) {
	vehicles, err := s.feed.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	s.overlay.Clear(BucketVehicles)
	added := s.overlay.MaterializeInto(BucketVehicles, vehicleFeatures(vehicles))
	return added, nil
}

// SetBucketVisible shows or hides one overlay bucket.
func (s *Session) SetBucketVisible(id overlay.BucketID, visible bool) {
	s.overlay.SetVisible(id, visible)
}

// Buckets lists the overlay buckets that exist so far.
func (s *Session) Buckets() []overlay.BucketID {
	return s.overlay.Buckets()
}

// ExportBucket renders one bucket as a GeoJSON FeatureCollection.
func (s *Session) ExportBucket(id overlay.BucketID) ([]byte, error) {
	return overlay.FeatureCollection(s.overlay.Features(id))
}

// History returns the session's saved query log.
func (s *Session) History() *History {
	return s.history
}

// InvalidateCache drops the cached copies of the full collections,
// forcing the next load to hit the API.
func (s *Session) InvalidateCache(ctx context.Context) {
	s.store.Invalidate(ctx, keyStops)
	s.store.Invalidate(ctx, keyShapes)
}
