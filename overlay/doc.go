// Package overlay keeps the map's feature buckets in sync with data
// arriving from the cache and the network. Each bucket remembers the
// feature IDs it has already been given, so materializing the same
// collection twice, or two overlapping query results, never draws a
// feature twice. Clearing a bucket also resets that memory.
package overlay
