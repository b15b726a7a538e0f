package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
)

// Vehicle movement statuses, derived from the feed's stop status.
const (
	StatusInTransit = "in_transit"
	StatusStopped   = "stopped"
)

// Vehicle is one live vehicle position.
type Vehicle struct {
	ID        string
	TripID    string
	RouteID   string
	Lat       float64
	Lon       float64
	Bearing   *float64
	Speed     *float64
	Status    string
	Timestamp int64
}

// Feed fetches vehicle positions from one GTFS-RT protobuf endpoint.
type Feed struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewFeed creates a feed client. An empty URL is allowed; Fetch then
// returns no vehicles, so realtime stays optional.
func NewFeed(url string, timeout time.Duration, log zerolog.Logger) *Feed {
	return &Feed{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Fetch downloads and decodes the feed, returning one Vehicle per entity
// that has a usable position. Entities without a position are skipped.
func (f *Feed) Fetch(ctx context.Context) ([]Vehicle, error) {
	if f.url == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", f.url, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, f.url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode GTFS-RT feed: %w", err)
	}

	vehicles := make([]Vehicle, 0, len(fm.Entity))
	for _, e := range fm.Entity {
		vp := e.Vehicle
		if vp == nil || vp.Position == nil || vp.Position.Latitude == nil || vp.Position.Longitude == nil {
			continue
		}
		v := Vehicle{
			Lat:    float64(*vp.Position.Latitude),
			Lon:    float64(*vp.Position.Longitude),
			Status: statusText(vp.CurrentStatus),
		}
		if vp.Vehicle != nil && vp.Vehicle.Id != nil {
			v.ID = *vp.Vehicle.Id
		}
		if v.ID == "" && e.Id != nil {
			v.ID = *e.Id
		}
		if vp.Trip != nil {
			if vp.Trip.TripId != nil {
				v.TripID = *vp.Trip.TripId
			}
			if vp.Trip.RouteId != nil {
				v.RouteID = *vp.Trip.RouteId
			}
		}
		if vp.Position.Bearing != nil {
			b := float64(*vp.Position.Bearing)
			v.Bearing = &b
		}
		if vp.Position.Speed != nil {
			s := float64(*vp.Position.Speed)
			v.Speed = &s
		}
		if vp.Timestamp != nil {
			v.Timestamp = int64(*vp.Timestamp)
		}
		vehicles = append(vehicles, v)
	}

	f.log.Debug().Int("vehicles", len(vehicles)).Int("entities", len(fm.Entity)).Msg("vehicle feed decoded")
	return vehicles, nil
}

func statusText(s *gtfsrtpb.VehiclePosition_VehicleStopStatus) string {
	if s != nil && *s == gtfsrtpb.VehiclePosition_STOPPED_AT {
		return StatusStopped
	}
	return StatusInTransit
}
