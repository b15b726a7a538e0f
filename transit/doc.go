// Package transit talks to the transit map HTTP API: paginated stop and
// shape collections, spatial query endpoints and per-entity detail
// endpoints. It decodes the server's GeoJSON feature payloads into plain
// structs and hides the pagination walk from callers.
package transit
