// Package ingest implements the per-version and per-repository ingestion
// pipeline: resolve a tarball, parse its manifest, compute a weighted
// keyword and category assignment, and write the result through a single
// store.Writer transaction.
//
// Grounded on indexer.Controller's shape: a fixed sequence of named stages
// run for one input (here, one crate version) ending in a single persist
// call, with warnings accumulated rather than aborting the run (compare
// Controller's layer-by-layer IndexReport accumulation in
// internal/indexer/controller.go).
package ingest
