// Package cache provides a file-based cache for named-entity recognizer
// results.
//
// Entries are keyed by a SHA-256 hash of the recognizer name, model and the
// exact text that was analysed. Each entry stores the entity spans together
// with a creation timestamp and a TTL in seconds. Expired entries are skipped
// on read and removed by [Cache.Prune].
//
// The default cache directory is $XDG_CACHE_HOME/leakshield (or the
// OS-appropriate equivalent). Files are written 0600 because the cached
// entities contain names and places taken from scanned text.
package cache
