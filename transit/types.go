package transit

// Stop is one transit stop decoded from a GeoJSON point feature.
// DistanceMeters is set only on results of spatial queries, where the
// server annotates each feature with its distance from the query point.
type Stop struct {
	ID             string
	Code           string
	Name           string
	Desc           string
	StopType       string
	Wheelchair     bool
	Lat            float64
	Lon            float64
	DistanceMeters *float64
}

// Waypoint is one vertex of a route geometry, in GeoJSON axis order.
type Waypoint struct {
	Longitude float64
	Latitude  float64
}

// RouteShape is the geometry of one route variant decoded from a GeoJSON
// LineString feature, with the owning route's descriptive fields.
type RouteShape struct {
	ID             string
	RouteID        string
	RouteShortName string
	RouteLongName  string
	RouteType      string
	Points         []Waypoint
}

// ScheduleEntry is one trip passing through a stop.
type ScheduleEntry struct {
	TripID         string  `json:"trip_id"`
	RouteID        string  `json:"route_id"`
	RouteShortName string  `json:"route_short_name"`
	RouteLongName  string  `json:"route_long_name"`
	TripHeadsign   string  `json:"trip_headsign"`
	ArrivalTime    string  `json:"arrival_time"`
	DepartureTime  string  `json:"departure_time"`
	StopSequence   flexInt `json:"stop_sequence"`
}

// TripDetail is one trip running over a shape, with its owning route.
type TripDetail struct {
	TripID         string     `json:"trip_id"`
	ServiceID      string     `json:"service_id"`
	TripHeadsign   string     `json:"trip_headsign"`
	RouteID        string     `json:"route_id"`
	RouteShortName string     `json:"route_short_name"`
	RouteLongName  string     `json:"route_long_name"`
	RouteType      flexString `json:"route_type"`
	ShapeID        string     `json:"shape_id"`
}

// RouteStop is one stop on a route, in visiting order.
type RouteStop struct {
	StopID        string  `json:"stop_id"`
	StopName      string  `json:"stop_name"`
	StopCode      string  `json:"stop_code"`
	StopDesc      string  `json:"stop_desc"`
	StopType      string  `json:"stop_type"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	StopSequence  flexInt `json:"stop_sequence"`
	ArrivalTime   *string `json:"arrival_time"`
	DepartureTime *string `json:"departure_time"`
}

// RouteStops is the full answer to an on-route lookup.
type RouteStops struct {
	RouteID        string      `json:"route_id"`
	RouteShortName string      `json:"route_short_name"`
	RouteLongName  string      `json:"route_long_name"`
	RouteType      flexString  `json:"route_type"`
	StopCount      int         `json:"stop_count"`
	Stops          []RouteStop `json:"stops"`
}
