package transitmap

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/theoremus-urban-solutions/transit-map/overlay"
	"github.com/theoremus-urban-solutions/transit-map/transit"
)

// QueryError reports a query rejected before any request was made.
type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// Category selects which feature kinds a spatial query asks for.
type Category string

const (
	CategoryPoints Category = "points"
	CategoryLines  Category = "lines"
)

// Radius asks for everything within DistanceMeters of a point.
type Radius struct {
	Lat            float64
	Lon            float64
	DistanceMeters float64
}

func (q Radius) validate() error {
	if !validLat(q.Lat) || !validLon(q.Lon) {
		return &QueryError{Msg: "Coordinates must be finite and within WGS84 bounds."}
	}
	if !finite(q.DistanceMeters) || q.DistanceMeters <= 0 {
		return &QueryError{Msg: "Radius must be a positive number of meters."}
	}
	return nil
}

// Bounds asks for everything inside a bounding box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (q Bounds) validate() error {
	if !validLat(q.MinLat) || !validLat(q.MaxLat) || !validLon(q.MinLon) || !validLon(q.MaxLon) {
		return &QueryError{Msg: "Bounds must be finite and within WGS84 bounds."}
	}
	if q.MinLat >= q.MaxLat || q.MinLon >= q.MaxLon {
		return &QueryError{Msg: "Bounds must have min strictly below max on both axes."}
	}
	return nil
}

// NearestK asks for the K stops closest to a point.
type NearestK struct {
	Lat float64
	Lon float64
	K   int
}

func (q NearestK) validate() error {
	if !validLat(q.Lat) || !validLon(q.Lon) {
		return &QueryError{Msg: "Coordinates must be finite and within WGS84 bounds."}
	}
	if q.K <= 0 {
		return &QueryError{Msg: "K must be a positive integer."}
	}
	return nil
}

// QueryResult holds what a spatial query found. Synthetic markers drawn
// alongside the results, like the nearest-K center pin, are not part of
// it.
type QueryResult struct {
	Points []transit.Stop
	Lines  []transit.RouteShape
}

func defaultCategories(cats []Category) []Category {
	if len(cats) == 0 {
		return []Category{CategoryPoints, CategoryLines}
	}
	return cats
}

// QueryRadius finds stops and route geometries within a radius of a
// point and draws them into the query-results bucket. Requested
// categories that fail come back empty rather than failing the whole
// query; a validation error means no request was made at all.
func (s *Session) QueryRadius(ctx context.Context, q Radius, categories ...Category) (QueryResult, error) {
	if err := q.validate(); err != nil {
		return QueryResult{}, err
	}
	km := KilometersFromMeters(q.DistanceMeters)

	res := s.fanOut(ctx, defaultCategories(categories),
		func(ctx context.Context) ([]transit.Stop, error) {
			return s.client.StopsNearby(ctx, q.Lat, q.Lon, km)
		},
		func(ctx context.Context) ([]transit.RouteShape, error) {
			return s.client.ShapesNearby(ctx, q.Lat, q.Lon, km)
		},
	)

	s.finishQuery(ctx, "radius", map[string]string{
		"lat":         formatFloat(q.Lat),
		"lon":         formatFloat(q.Lon),
		"distance_km": formatFloat(km),
	}, res, nil)
	return res, nil
}

// QueryBounds finds stops and route geometries inside a bounding box and
// draws them into the query-results bucket.
func (s *Session) QueryBounds(ctx context.Context, q Bounds, categories ...Category) (QueryResult, error) {
	if err := q.validate(); err != nil {
		return QueryResult{}, err
	}

	res := s.fanOut(ctx, defaultCategories(categories),
		func(ctx context.Context) ([]transit.Stop, error) {
			return s.client.StopsInBounds(ctx, q.MinLat, q.MaxLat, q.MinLon, q.MaxLon)
		},
		func(ctx context.Context) ([]transit.RouteShape, error) {
			return s.client.ShapesInBounds(ctx, q.MinLat, q.MaxLat, q.MinLon, q.MaxLon)
		},
	)

	s.finishQuery(ctx, "bounds", map[string]string{
		"min_lat": formatFloat(q.MinLat),
		"max_lat": formatFloat(q.MaxLat),
		"min_lon": formatFloat(q.MinLon),
		"max_lon": formatFloat(q.MaxLon),
	}, res, nil)
	return res, nil
}

// QueryNearest finds the K stops closest to a point, draws them and a
// synthetic center marker into the query-results bucket, and returns the
// stops. The marker is display-only and never appears in the result.
func (s *Session) QueryNearest(ctx context.Context, q NearestK) (QueryResult, error) {
	if err := q.validate(); err != nil {
		return QueryResult{}, err
	}

	var res QueryResult
	stops, err := s.client.KNearestStops(ctx, q.Lat, q.Lon, q.K)
	if err != nil {
		s.log.Warn().Err(err).Msg("nearest-k query degraded to empty")
	} else {
		res.Points = stops
	}

	center := centerFeature(q.Lat, q.Lon)
	s.finishQuery(ctx, "k_nearest", map[string]string{
		"lat": formatFloat(q.Lat),
		"lon": formatFloat(q.Lon),
		"k":   strconv.Itoa(q.K),
	}, res, &center)
	return res, nil
}

// fanOut runs the requested categories concurrently. A failed category
// logs and leaves its slice empty.
func (s *Session) fanOut(
	ctx context.Context,
	categories []Category,
	points func(context.Context) ([]transit.Stop, error),
	lines func(context.Context) ([]transit.RouteShape, error),
) QueryResult {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res QueryResult
	)
	for _, cat := range categories {
		wg.Add(1)
		go func(cat Category) {
			defer wg.Done()
			switch cat {
			case CategoryPoints:
				stops, err := points(ctx)
				if err != nil {
					s.log.Warn().Err(err).Str("category", string(cat)).Msg("query category degraded to empty")
					return
				}
				mu.Lock()
				res.Points = stops
				mu.Unlock()
			case CategoryLines:
				shapes, err := lines(ctx)
				if err != nil {
					s.log.Warn().Err(err).Str("category", string(cat)).Msg("query category degraded to empty")
					return
				}
				mu.Lock()
				res.Lines = shapes
				mu.Unlock()
			}
		}(cat)
	}
	wg.Wait()
	return res
}

// finishQuery replaces the query-results bucket with this query's
// findings, points before lines, and records the query in the history.
func (s *Session) finishQuery(ctx context.Context, kind string, params map[string]string, res QueryResult, extra *overlay.Feature) {
	s.overlay.Clear(BucketQueryResults)

	features := make([]overlay.Feature, 0, len(res.Points)+len(res.Lines)+1)
	features = append(features, stopFeatures(res.Points)...)
	features = append(features, shapeFeatures(res.Lines)...)
	if extra != nil {
		features = append(features, *extra)
	}
	s.overlay.MaterializeInto(BucketQueryResults, features)

	s.history.Record(ctx, kind, params, len(res.Points), len(res.Lines))
	s.log.Info().Str("kind", kind).Int("points", len(res.Points)).Int("lines", len(res.Lines)).Msg("query finished")
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%v", v)
}
