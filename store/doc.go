// Package store defines the Relational Index's public contract: a single-writer, many-reader persistent store of packages,
// versions, keywords, categories, repo associations, change history,
// ownership, and rankings.
//
// Grounding: the Writer/Reader split and the "one fat interface composed of
// smaller ones" shape is adapted from claircore's `indexer.Store`
// (`indexer/store.go`: Setter+Querier+Indexer composed into Store). Here
// that becomes Writer+Reader composed into Store, with the same "Close
// frees resources" contract. The concrete Postgres implementation lives in
// `store/postgres`, grounded on `datastore/postgres`.
package store

import "context"

// Store is everything the Ingestion Pipeline (C6) and Page Builder (C7)
// need from the Relational Index.
type Store interface {
	Writer
	Reader
	Close(context.Context) error
}
