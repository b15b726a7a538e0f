// Package realtime fetches live vehicle positions from a GTFS-RT feed
// and flattens them into plain vehicle records for the map's vehicle
// overlay.
package realtime
