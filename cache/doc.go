// Package cache implements the two-tier local cache for fetched entity
// collections.
//
// The small tier is a single JSON file meant for compact entity lists; the
// bulk tier holds large geometry payloads behind the Backend interface,
// with gob-file and Redis implementations. Which tier serves a key is a
// static mapping fixed when the store is built, not a per-call choice.
//
// Every entry carries its own stored-at timestamp and TTL; expiry is
// evaluated at read time and stale entries are evicted on read. There is
// no background sweep. Reads and writes fail soft: a broken file, an
// unreachable Redis or an undecodable entry is reported as a plain cache
// miss and the caller falls back to the network path.
package cache
