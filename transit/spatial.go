package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) spatialGet(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	pg, err := decodePage(body)
	if err != nil {
		return nil, err
	}
	return pg.items, nil
}

// StopsNearby finds stops within radiusKM kilometers of a point, nearest
// first. Each result carries its distance from the point in meters.
func (c *Client) StopsNearby(ctx context.Context, lat, lon, radiusKM float64) ([]Stop, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("distance_km", formatCoord(radiusKM))
	items, err := c.spatialGet(ctx, "/stops/nearby/", params)
	if err != nil {
		return nil, err
	}
	return decodeStops(items), nil
}

// ShapesNearby finds route geometries within radiusKM kilometers of a point.
func (c *Client) ShapesNearby(ctx context.Context, lat, lon, radiusKM float64) ([]RouteShape, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("distance_km", formatCoord(radiusKM))
	items, err := c.spatialGet(ctx, "/shapes/nearby/", params)
	if err != nil {
		return nil, err
	}
	return decodeShapes(items), nil
}

func boundsParams(minLat, maxLat, minLon, maxLon float64) url.Values {
	params := url.Values{}
	params.Set("min_lat", formatCoord(minLat))
	params.Set("max_lat", formatCoord(maxLat))
	params.Set("min_lon", formatCoord(minLon))
	params.Set("max_lon", formatCoord(maxLon))
	return params
}

// StopsInBounds finds stops inside a bounding box.
func (c *Client) StopsInBounds(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]Stop, error) {
	items, err := c.spatialGet(ctx, "/stops/in_bounds/", boundsParams(minLat, maxLat, minLon, maxLon))
	if err != nil {
		return nil, err
	}
	return decodeStops(items), nil
}

// ShapesInBounds finds route geometries intersecting a bounding box.
func (c *Client) ShapesInBounds(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]RouteShape, error) {
	items, err := c.spatialGet(ctx, "/shapes/in_bounds/", boundsParams(minLat, maxLat, minLon, maxLon))
	if err != nil {
		return nil, err
	}
	return decodeShapes(items), nil
}

// KNearestStops finds the k stops closest to a point, nearest first, each
// annotated with its distance in meters.
func (c *Client) KNearestStops(ctx context.Context, lat, lon float64, k int) ([]Stop, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("k", strconv.Itoa(k))
	items, err := c.spatialGet(ctx, "/stops/k_nearest/", params)
	if err != nil {
		return nil, err
	}
	return decodeStops(items), nil
}

// StopsOnRoute lists the stops a route visits, in sequence order. A
// route the server does not know yields ErrNotFound.
func (c *Client) StopsOnRoute(ctx context.Context, routeID string) (RouteStops, error) {
	params := url.Values{}
	params.Set("route_id", routeID)
	body, err := c.get(ctx, "/stops/on_route/", params)
	if err != nil {
		return RouteStops{}, err
	}
	var rs RouteStops
	if err := json.Unmarshal(body, &rs); err != nil {
		return RouteStops{}, fmt.Errorf("failed to decode on_route response: %w", err)
	}
	return rs, nil
}
