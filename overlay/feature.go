package overlay

// BucketID names one overlay bucket, such as "stops" or "query-results".
type BucketID string

// Geometry is a GeoJSON geometry restricted to the two types the map
// draws. Coordinates are [longitude, latitude] pairs: one pair for a
// Point, the vertex list for a LineString. Its JSON form follows the
// GeoJSON spec, which nests Point coordinates one level less deep.
type Geometry struct {
	Type        string
	Coordinates [][2]float64
}

const (
	GeometryPoint      = "Point"
	GeometryLineString = "LineString"
)

// Feature is one drawable map feature. ID must be stable and unique
// within the collections feeding a bucket; it is what the dedup ledger
// keys on.
type Feature struct {
	ID         string         `json:"id"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Point builds a point geometry.
func Point(lon, lat float64) Geometry {
	return Geometry{Type: GeometryPoint, Coordinates: [][2]float64{{lon, lat}}}
}

// Line builds a line geometry from its vertices.
func Line(coords [][2]float64) Geometry {
	return Geometry{Type: GeometryLineString, Coordinates: coords}
}
