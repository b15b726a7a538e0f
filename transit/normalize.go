package transit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// The API wraps list responses in several shapes: DRF pagination with
// count/next/previous, an offset/limit envelope, a plain {"results": []}
// wrapper, a GeoJSON FeatureCollection and, for some detail endpoints, a
// bare array. decodePage normalizes all of them to one item list plus the
// pagination hints that happened to be present.

type listEnvelope struct {
	Count    *int              `json:"count"`
	Next     *string           `json:"next"`
	Results  []json.RawMessage `json:"results"`
	Features []json.RawMessage `json:"features"`
}

type page struct {
	items []json.RawMessage
	count int     // total collection size, -1 when the envelope has none
	next  *string // next page URL, nil when absent or null
	bare  bool    // response was a bare array, not an envelope
}

func decodePage(body []byte) (page, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return page{}, fmt.Errorf("failed to decode response array: %w", err)
		}
		return page{items: items, count: -1, bare: true}, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return page{}, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	p := page{items: env.Results, count: -1, next: env.Next}
	if p.items == nil {
		p.items = env.Features
	}
	if env.Count != nil {
		p.count = *env.Count
	}
	return p, nil
}

type geoGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoFeature struct {
	Geometry   geoGeometry                `json:"geometry"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// flexBool accepts JSON true/false as well as the 0/1 the server emits for
// GTFS wheelchair_boarding fields.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// flexString accepts a JSON string or number, returning the number's
// decimal text. GTFS enumerations like route_type arrive both ways.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = flexString(data)
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if string(data) == "null" || len(data) == 0 {
		*i = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*i = flexInt(v)
	return nil
}

func propString(props map[string]json.RawMessage, key string) string {
	raw, ok := props[key]
	if !ok {
		return ""
	}
	var s flexString
	if err := s.UnmarshalJSON(raw); err != nil {
		return ""
	}
	return string(s)
}

func propBool(props map[string]json.RawMessage, key string) bool {
	raw, ok := props[key]
	if !ok {
		return false
	}
	var b flexBool
	_ = b.UnmarshalJSON(raw)
	return bool(b)
}

func propFloat(props map[string]json.RawMessage, key string) *float64 {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// decodeStop turns one GeoJSON point feature into a Stop.
func decodeStop(raw json.RawMessage) (Stop, error) {
	var f geoFeature
	if err := json.Unmarshal(raw, &f); err != nil {
		return Stop{}, fmt.Errorf("failed to decode stop feature: %w", err)
	}
	var coords []float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
		return Stop{}, fmt.Errorf("failed to decode stop coordinates: %w", err)
	}
	if len(coords) < 2 {
		return Stop{}, fmt.Errorf("stop feature has %d coordinates, want 2", len(coords))
	}
	return Stop{
		ID:             propString(f.Properties, "stop_id"),
		Code:           propString(f.Properties, "stop_code"),
		Name:           propString(f.Properties, "stop_name"),
		Desc:           propString(f.Properties, "stop_desc"),
		StopType:       propString(f.Properties, "stop_type"),
		Wheelchair:     propBool(f.Properties, "wheelchair_boarding"),
		Lon:            coords[0],
		Lat:            coords[1],
		DistanceMeters: propFloat(f.Properties, "distance"),
	}, nil
}

// decodeShape turns one GeoJSON LineString feature into a RouteShape.
func decodeShape(raw json.RawMessage) (RouteShape, error) {
	var f geoFeature
	if err := json.Unmarshal(raw, &f); err != nil {
		return RouteShape{}, fmt.Errorf("failed to decode shape feature: %w", err)
	}
	var coords [][]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
		return RouteShape{}, fmt.Errorf("failed to decode shape coordinates: %w", err)
	}
	points := make([]Waypoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return RouteShape{}, fmt.Errorf("shape vertex has %d coordinates, want 2", len(c))
		}
		points = append(points, Waypoint{Longitude: c[0], Latitude: c[1]})
	}
	return RouteShape{
		ID:             propString(f.Properties, "shape_id"),
		RouteID:        propString(f.Properties, "route_id"),
		RouteShortName: propString(f.Properties, "route_short_name"),
		RouteLongName:  propString(f.Properties, "route_long_name"),
		RouteType:      propString(f.Properties, "route_type"),
		Points:         points,
	}, nil
}

func decodeStops(items []json.RawMessage) []Stop {
	stops := make([]Stop, 0, len(items))
	for _, raw := range items {
		s, err := decodeStop(raw)
		if err != nil {
			continue
		}
		stops = append(stops, s)
	}
	return stops
}

func decodeShapes(items []json.RawMessage) []RouteShape {
	shapes := make([]RouteShape, 0, len(items))
	for _, raw := range items {
		s, err := decodeShape(raw)
		if err != nil {
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes
}
