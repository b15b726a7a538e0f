package transitmap

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-map/overlay"
	"github.com/theoremus-urban-solutions/transit-map/realtime"
	"github.com/theoremus-urban-solutions/transit-map/transit"
)

// Feature IDs are prefixed per entity kind so collections sharing a
// bucket, like mixed query results, cannot collide in the dedup ledger.

func featureFromStop(s transit.Stop) overlay.Feature {
	props := map[string]any{
		"stop_id":             s.ID,
		"stop_code":           s.Code,
		"stop_name":           s.Name,
		"stop_desc":           s.Desc,
		"stop_type":           s.StopType,
		"wheelchair_boarding": s.Wheelchair,
	}
	if s.DistanceMeters != nil {
		props["distance"] = *s.DistanceMeters
	}
	return overlay.Feature{
		ID:         "stop:" + s.ID,
		Geometry:   overlay.Point(s.Lon, s.Lat),
		Properties: props,
	}
}

func featureFromShape(sh transit.RouteShape) overlay.Feature {
	coords := make([][2]float64, len(sh.Points))
	for i, p := range sh.Points {
		coords[i] = [2]float64{p.Longitude, p.Latitude}
	}
	return overlay.Feature{
		ID:       "shape:" + sh.ID,
		Geometry: overlay.Line(coords),
		Properties: map[string]any{
			"shape_id":         sh.ID,
			"route_id":         sh.RouteID,
			"route_short_name": sh.RouteShortName,
			"route_long_name":  sh.RouteLongName,
			"route_type":       sh.RouteType,
		},
	}
}

func featureFromVehicle(v realtime.Vehicle) overlay.Feature {
	props := map[string]any{
		"vehicle_id": v.ID,
		"trip_id":    v.TripID,
		"route_id":   v.RouteID,
		"status":     v.Status,
	}
	if v.Bearing != nil {
		props["bearing"] = *v.Bearing
	}
	if v.Speed != nil {
		props["speed"] = *v.Speed
	}
	if v.Timestamp > 0 {
		props["timestamp"] = v.Timestamp
	}
	return overlay.Feature{
		ID:         "vehicle:" + v.ID,
		Geometry:   overlay.Point(v.Lon, v.Lat),
		Properties: props,
	}
}

func centerFeature(lat, lon float64) overlay.Feature {
	return overlay.Feature{
		ID:         fmt.Sprintf("center:%v,%v", lat, lon),
		Geometry:   overlay.Point(lon, lat),
		Properties: map[string]any{"marker": "query-center"},
	}
}

func stopFeatures(stops []transit.Stop) []overlay.Feature {
	out := make([]overlay.Feature, len(stops))
	for i, s := range stops {
		out[i] = featureFromStop(s)
	}
	return out
}

func shapeFeatures(shapes []transit.RouteShape) []overlay.Feature {
	out := make([]overlay.Feature, len(shapes))
	for i, sh := range shapes {
		out[i] = featureFromShape(sh)
	}
	return out
}

func vehicleFeatures(vehicles []realtime.Vehicle) []overlay.Feature {
	out := make([]overlay.Feature, len(vehicles))
	for i, v := range vehicles {
		out[i] = featureFromVehicle(v)
	}
	return out
}
