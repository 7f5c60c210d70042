// Package cache is the disk-backed per-URL page cache: a flat directory of
// files named by URL slug, each holding rendered HTML bytes plus a
// last-modified timestamp, with age-based soft/hard freshness tiers.
//
// Grounded on mirror.Snapshot/mirror.Manager's "load from a directory,
// atomic swap" shape for the on-disk I/O. The package defines no metrics of
// its own; cache hits are counted by the server package.
package cache
