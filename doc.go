// Package transitmap is the data core of a transit map client. It loads
// stop and route geometry collections from a remote transport API through
// a two-tier local cache, answers spatial queries, and keeps the map's
// overlay buckets populated without ever drawing the same feature twice.
//
// The entry point is Session: construct one with NewSession, point it at
// a renderer, and call LoadStops, LoadShapes, the Query methods and
// RefreshVehicles as the user drives the map.
package transitmap
