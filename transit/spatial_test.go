package transit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStopsNearby_ParamsAndDistance(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stops/nearby/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "59.437" || q.Get("lon") != "24.7536" || q.Get("distance_km") != "1.5" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"count":1,"results":[{
			"geometry": {"type": "Point", "coordinates": [24.75, 59.43]},
			"properties": {"stop_id": "S1", "distance": 240.5}
		}]}`)
	}))

	stops, err := c.StopsNearby(context.Background(), 59.437, 24.7536, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 1 {
		t.Fatalf("got %d stops", len(stops))
	}
	if stops[0].DistanceMeters == nil || *stops[0].DistanceMeters != 240.5 {
		t.Errorf("distance = %v", stops[0].DistanceMeters)
	}
}

func TestStopsInBounds_Params(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for key, want := range map[string]string{
			"min_lat": "59.4", "max_lat": "59.5", "min_lon": "24.7", "max_lon": "24.8",
		} {
			if q.Get(key) != want {
				t.Errorf("%s = %q, want %q", key, q.Get(key), want)
			}
		}
		fmt.Fprint(w, `{"count":0,"results":[]}`)
	}))

	if _, err := c.StopsInBounds(context.Background(), 59.4, 59.5, 24.7, 24.8); err != nil {
		t.Fatal(err)
	}
}

func TestKNearestStops(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("k"); got != "3" {
			t.Errorf("k = %q", got)
		}
		fmt.Fprint(w, `{"results":[`+stopFeature("N1")+","+stopFeature("N2")+","+stopFeature("N3")+`]}`)
	}))

	stops, err := c.KNearestStops(context.Background(), 59.4, 24.7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 3 || stops[0].ID != "N1" {
		t.Errorf("stops = %+v", stops)
	}
}

func TestStopsOnRoute(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("route_id") != "R7" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"route_id": "R7",
			"route_short_name": "7",
			"route_long_name": "Harbor Loop",
			"route_type": 3,
			"stop_count": 2,
			"stops": [
				{"stop_id": "S1", "stop_name": "A", "latitude": 59.4, "longitude": 24.7, "stop_sequence": 1, "arrival_time": "08:00:00", "departure_time": "08:00:30"},
				{"stop_id": "S2", "stop_name": "B", "latitude": 59.5, "longitude": 24.8, "stop_sequence": 2, "arrival_time": null, "departure_time": null}
			]
		}`)
	}))

	rs, err := c.StopsOnRoute(context.Background(), "R7")
	if err != nil {
		t.Fatal(err)
	}
	if rs.RouteID != "R7" || rs.StopCount != 2 || len(rs.Stops) != 2 {
		t.Fatalf("route stops = %+v", rs)
	}
	if string(rs.RouteType) != "3" {
		t.Errorf("route_type = %q", rs.RouteType)
	}
	if rs.Stops[1].ArrivalTime != nil {
		t.Error("null arrival_time should decode to nil")
	}
}

func TestStopsOnRoute_UnknownRoute(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.StopsOnRoute(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
