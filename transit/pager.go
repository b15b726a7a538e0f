package transit

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// fetchPages walks a paginated collection endpoint until the server says
// it is done. It follows the server's next link when one is given and
// steps by offset/limit otherwise.
//
// A failure partway through the walk ends it: whatever pages already
// arrived are returned so the caller can still render something, with
// complete=false so the short result is never mistaken for the full
// collection (in particular, never cached as one).
func (c *Client) fetchPages(ctx context.Context, path string) (items []json.RawMessage, complete bool) {
	offset := 0
	nextURL := ""

	for {
		var body []byte
		var err error
		if nextURL != "" {
			body, err = c.getURL(ctx, nextURL)
		} else {
			params := url.Values{}
			params.Set("offset", strconv.Itoa(offset))
			params.Set("limit", strconv.Itoa(c.pageSize))
			body, err = c.get(ctx, path, params)
		}
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Int("items", len(items)).
				Msg("collection walk stopped early")
			return items, false
		}

		pg, err := decodePage(body)
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Int("items", len(items)).
				Msg("collection walk stopped early")
			return items, false
		}
		if len(pg.items) == 0 {
			return items, true
		}
		items = append(items, pg.items...)
		offset += len(pg.items)

		switch {
		case pg.bare:
			// A bare array is the whole collection.
			return items, true
		case pg.count >= 0 && len(items) >= pg.count:
			return items, true
		case pg.next != nil && *pg.next != "":
			nextURL = *pg.next
		case len(pg.items) < c.pageSize:
			// Short page with no next link means the server ran out.
			return items, true
		default:
			nextURL = ""
		}
	}
}

// FetchAllStops retrieves the stop collection. complete reports whether
// the walk reached the collection's end; a false value means the slice is
// a usable-but-partial snapshot. Features the decoder cannot make sense
// of are dropped, not fatal.
func (c *Client) FetchAllStops(ctx context.Context) (stops []Stop, complete bool) {
	items, complete := c.fetchPages(ctx, "/stops/")
	stops = decodeStops(items)
	if len(stops) < len(items) {
		c.log.Warn().Int("dropped", len(items)-len(stops)).Msg("undecodable stop features skipped")
	}
	return stops, complete
}

// FetchAllShapes retrieves the route geometry collection, with the same
// completeness contract as FetchAllStops.
func (c *Client) FetchAllShapes(ctx context.Context) (shapes []RouteShape, complete bool) {
	items, complete := c.fetchPages(ctx, "/shapes/")
	shapes = decodeShapes(items)
	if len(shapes) < len(items) {
		c.log.Warn().Int("dropped", len(items)-len(shapes)).Msg("undecodable shape features skipped")
	}
	return shapes, complete
}
