package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

type scheduleResponse struct {
	StopID    string          `json:"stop_id"`
	StopName  string          `json:"stop_name"`
	Count     int             `json:"schedule_count"`
	Schedules []ScheduleEntry `json:"schedules"`
}

// SchedulesForStop fetches the trip schedules passing through a stop.
func (c *Client) SchedulesForStop(ctx context.Context, stopID string) ([]ScheduleEntry, error) {
	body, err := c.get(ctx, "/stops/"+url.PathEscape(stopID)+"/schedules/", nil)
	if err != nil {
		return nil, err
	}
	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode schedules for stop %q: %w", stopID, err)
	}
	return resp.Schedules, nil
}

// TripsForShape fetches the trips that run over a route geometry.
func (c *Client) TripsForShape(ctx context.Context, shapeID string) ([]TripDetail, error) {
	params := url.Values{}
	params.Set("shape_id", shapeID)
	body, err := c.get(ctx, "/shapes/trip_details/", params)
	if err != nil {
		return nil, err
	}
	var trips []TripDetail
	if err := json.Unmarshal(body, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips for shape %q: %w", shapeID, err)
	}
	return trips, nil
}

// DetailLoader memoizes per-entity detail lookups for the life of the
// session. Detail data is immutable for a given dataset, so a successful
// answer, including an empty one, is kept forever; a failed lookup caches
// nothing and the next call retries.
type DetailLoader struct {
	client *Client

	mu        sync.Mutex
	schedules map[string][]ScheduleEntry
	trips     map[string][]TripDetail
}

// NewDetailLoader creates a loader backed by client.
func NewDetailLoader(client *Client) *DetailLoader {
	return &DetailLoader{
		client:    client,
		schedules: map[string][]ScheduleEntry{},
		trips:     map[string][]TripDetail{},
	}
}

// Schedules returns the cached schedules for stopID, fetching them on
// first use. On a fetch failure it returns an empty slice and leaves the
// cache untouched.
func (d *DetailLoader) Schedules(ctx context.Context, stopID string) []ScheduleEntry {
	d.mu.Lock()
	cached, ok := d.schedules[stopID]
	d.mu.Unlock()
	if ok {
		return cached
	}

	entries, err := d.client.SchedulesForStop(ctx, stopID)
	if err != nil {
		d.client.log.Warn().Err(err).Str("stop_id", stopID).Msg("schedule lookup failed")
		return []ScheduleEntry{}
	}
	if entries == nil {
		entries = []ScheduleEntry{}
	}

	d.mu.Lock()
	d.schedules[stopID] = entries
	d.mu.Unlock()
	return entries
}

// Trips returns the cached trip details for shapeID, fetching them on
// first use. Failures behave as in Schedules.
func (d *DetailLoader) Trips(ctx context.Context, shapeID string) []TripDetail {
	d.mu.Lock()
	cached, ok := d.trips[shapeID]
	d.mu.Unlock()
	if ok {
		return cached
	}

	trips, err := d.client.TripsForShape(ctx, shapeID)
	if err != nil {
		d.client.log.Warn().Err(err).Str("shape_id", shapeID).Msg("trip detail lookup failed")
		return []TripDetail{}
	}
	if trips == nil {
		trips = []TripDetail{}
	}

	d.mu.Lock()
	d.trips[shapeID] = trips
	d.mu.Unlock()
	return trips
}
