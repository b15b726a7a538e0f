package transitmap

import "math"

// KilometersFromMeters converts a distance in meters to the kilometers
// the remote API's distance_km parameters expect. Every radius crossing
// the wire goes through here.
func KilometersFromMeters(meters float64) float64 {
	return meters / 1000.0
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func validLat(lat float64) bool { return finite(lat) && lat >= -90 && lat <= 90 }
func validLon(lon float64) bool { return finite(lon) && lon >= -180 && lon <= 180 }
