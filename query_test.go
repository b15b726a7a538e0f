package transitmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-map/config"
	"github.com/theoremus-urban-solutions/transit-map/overlay"
)

func testSession(t *testing.T, handler http.Handler) (*Session, *requestLog) {
	t.Helper()
	rl := &requestLog{}
	srv := httptest.NewServer(rl.wrap(handler))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.Config{
		API: config.APIConfig{BaseURL: srv.URL, TimeoutMS: 5000, PageSize: 100},
		Cache: config.CacheConfig{
			SmallPath:  filepath.Join(dir, "lists.json"),
			BulkDir:    filepath.Join(dir, "geometry"),
			TTLMinutes: 60,
		},
	}
	return NewSession(cfg, nil, zerolog.Nop()), rl
}

type requestLog struct {
	mu       sync.Mutex
	requests []string
}

func (rl *requestLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.mu.Lock()
		rl.requests = append(rl.requests, r.URL.Path+"?"+r.URL.RawQuery)
		rl.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (rl *requestLog) all() []string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make([]string, len(rl.requests))
	copy(out, rl.requests)
	return out
}

func stopFeatureJSON(id string, distance float64) string {
	return fmt.Sprintf(`{
		"geometry": {"type": "Point", "coordinates": [24.7, 59.4]},
		"properties": {"stop_id": %q, "stop_name": "Stop", "distance": %v}
	}`, id, distance)
}

const shapeFeatureJSON = `{
	"geometry": {"type": "LineString", "coordinates": [[24.1, 59.1], [24.2, 59.2]]},
	"properties": {"shape_id": "SH1", "route_id": "R1", "route_type": "3"}
}`

func spatialHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stops/nearby/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("distance_km"); got != "1.5" {
			t.Errorf("distance_km = %q, want 1.5", got)
		}
		fmt.Fprint(w, `{"results":[`+stopFeatureJSON("S1", 240.5)+`]}`)
	})
	mux.HandleFunc("/shapes/nearby/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`+shapeFeatureJSON+`]}`)
	})
	mux.HandleFunc("/stops/in_bounds/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`+stopFeatureJSON("S2", 0)+`]}`)
	})
	mux.HandleFunc("/shapes/in_bounds/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`+shapeFeatureJSON+`]}`)
	})
	mux.HandleFunc("/stops/k_nearest/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`+stopFeatureJSON("N1", 10)+","+stopFeatureJSON("N2", 20)+`]}`)
	})
	return mux
}

func TestQueryRadius_ConvertsMetersToKilometers(t *testing.T) {
	s, _ := testSession(t, spatialHandler(t))

	res, err := s.QueryRadius(context.Background(), Radius{Lat: 59.437, Lon: 24.7536, DistanceMeters: 1500})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 1 || len(res.Lines) != 1 {
		t.Fatalf("result = %d points, %d lines", len(res.Points), len(res.Lines))
	}
	if res.Points[0].DistanceMeters == nil || *res.Points[0].DistanceMeters != 240.5 {
		t.Errorf("distance annotation = %v", res.Points[0].DistanceMeters)
	}
}

func TestKilometersFromMeters(t *testing.T) {
	if got := KilometersFromMeters(1500); got != 1.5 {
		t.Errorf("got %v, want 1.5", got)
	}
	if got := KilometersFromMeters(0); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestQuery_RejectsDegenerateInputWithoutRequests(t *testing.T) {
	s, rl := testSession(t, spatialHandler(t))
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"zero radius", func() error {
			_, err := s.QueryRadius(ctx, Radius{Lat: 59, Lon: 24, DistanceMeters: 0})
			return err
		}},
		{"negative radius", func() error {
			_, err := s.QueryRadius(ctx, Radius{Lat: 59, Lon: 24, DistanceMeters: -10})
			return err
		}},
		{"nan latitude", func() error {
			_, err := s.QueryRadius(ctx, Radius{Lat: math.NaN(), Lon: 24, DistanceMeters: 100})
			return err
		}},
		{"latitude out of range", func() error {
			_, err := s.QueryRadius(ctx, Radius{Lat: 91, Lon: 24, DistanceMeters: 100})
			return err
		}},
		{"inverted bounds", func() error {
			_, err := s.QueryBounds(ctx, Bounds{MinLat: 59.5, MaxLat: 59.4, MinLon: 24.7, MaxLon: 24.8})
			return err
		}},
		{"empty bounds", func() error {
			_, err := s.QueryBounds(ctx, Bounds{MinLat: 59.4, MaxLat: 59.4, MinLon: 24.7, MaxLon: 24.8})
			return err
		}},
		{"zero k", func() error {
			_, err := s.QueryNearest(ctx, NearestK{Lat: 59, Lon: 24, K: 0})
			return err
		}},
		{"infinite longitude", func() error {
			_, err := s.QueryNearest(ctx, NearestK{Lat: 59, Lon: math.Inf(1), K: 3})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("err = %v, want *QueryError", err)
			}
		})
	}
	if got := rl.all(); len(got) != 0 {
		t.Errorf("degenerate queries reached the server: %v", got)
	}
}

func TestQueryNearest_CenterMarkerDrawnButNotReturned(t *testing.T) {
	s, _ := testSession(t, spatialHandler(t))

	res, err := s.QueryNearest(context.Background(), NearestK{Lat: 59.437, Lon: 24.7536, K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(res.Points))
	}
	for _, p := range res.Points {
		if strings.HasPrefix(p.ID, "center:") {
			t.Error("center marker leaked into the result")
		}
	}

	feats := s.overlay.Features(BucketQueryResults)
	if len(feats) != 3 {
		t.Fatalf("bucket holds %d features, want 2 stops + center", len(feats))
	}
	if !strings.HasPrefix(feats[2].ID, "center:") {
		t.Errorf("last feature = %s, want center marker", feats[2].ID)
	}
}

func TestQuery_ResultsBucketIsSingleShot(t *testing.T) {
	s, _ := testSession(t, spatialHandler(t))
	ctx := context.Background()

	if _, err := s.QueryRadius(ctx, Radius{Lat: 59.4, Lon: 24.7, DistanceMeters: 1500}); err != nil {
		t.Fatal(err)
	}
	first := s.overlay.Features(BucketQueryResults)

	if _, err := s.QueryBounds(ctx, Bounds{MinLat: 59.4, MaxLat: 59.5, MinLon: 24.7, MaxLon: 24.8}); err != nil {
		t.Fatal(err)
	}
	second := s.overlay.Features(BucketQueryResults)

	for _, f := range second {
		if f.ID == first[0].ID {
			t.Errorf("feature %s from the first query survived the second", f.ID)
		}
	}
}

func TestQuery_PointsPrecedeLines(t *testing.T) {
	s, _ := testSession(t, spatialHandler(t))

	if _, err := s.QueryRadius(context.Background(), Radius{Lat: 59.4, Lon: 24.7, DistanceMeters: 1500}); err != nil {
		t.Fatal(err)
	}
	feats := s.overlay.Features(BucketQueryResults)
	if len(feats) != 2 {
		t.Fatalf("bucket holds %d features", len(feats))
	}
	if feats[0].Geometry.Type != overlay.GeometryPoint || feats[1].Geometry.Type != overlay.GeometryLineString {
		t.Errorf("order = %s, %s", feats[0].Geometry.Type, feats[1].Geometry.Type)
	}
}

func TestQuery_FailedCategoryDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stops/nearby/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/shapes/nearby/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`+shapeFeatureJSON+`]}`)
	})
	s, _ := testSession(t, mux)

	res, err := s.QueryRadius(context.Background(), Radius{Lat: 59.4, Lon: 24.7, DistanceMeters: 1500})
	if err != nil {
		t.Fatalf("a failed category must not fail the query: %v", err)
	}
	if len(res.Points) != 0 {
		t.Errorf("failed category returned %d points", len(res.Points))
	}
	if len(res.Lines) != 1 {
		t.Errorf("healthy category lost: %d lines", len(res.Lines))
	}
}

func TestQuery_SingleCategoryOnlyFetchesThatCategory(t *testing.T) {
	s, rl := testSession(t, spatialHandler(t))

	res, err := s.QueryRadius(context.Background(), Radius{Lat: 59.4, Lon: 24.7, DistanceMeters: 1500}, CategoryLines)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 0 || len(res.Lines) != 1 {
		t.Errorf("result = %d points, %d lines", len(res.Points), len(res.Lines))
	}
	for _, req := range rl.all() {
		if strings.HasPrefix(req, "/stops/") {
			t.Errorf("points endpoint hit for a lines-only query: %s", req)
		}
	}
}
