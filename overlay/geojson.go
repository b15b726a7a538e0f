package overlay

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON emits spec-shaped GeoJSON: a Point carries a single
// position, a LineString an array of them.
func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case GeometryPoint:
		if len(g.Coordinates) != 1 {
			return nil, fmt.Errorf("point geometry has %d positions, want 1", len(g.Coordinates))
		}
		return json.Marshal(struct {
			Type        string     `json:"type"`
			Coordinates [2]float64 `json:"coordinates"`
		}{g.Type, g.Coordinates[0]})
	case GeometryLineString:
		return json.Marshal(struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"`
		}{g.Type, g.Coordinates})
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

type featureJSON struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection renders features as a GeoJSON FeatureCollection
// document, ready to hand to a map widget or write to disk.
func FeatureCollection(features []Feature) ([]byte, error) {
	out := struct {
		Type     string        `json:"type"`
		Features []featureJSON `json:"features"`
	}{Type: "FeatureCollection", Features: make([]featureJSON, 0, len(features))}

	for _, f := range features {
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		out.Features = append(out.Features, featureJSON{
			Type:       "Feature",
			ID:         f.ID,
			Geometry:   f.Geometry,
			Properties: props,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
