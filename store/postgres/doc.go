/*
Package postgres implements store.Store for a PostgreSQL database.

One file per write or read operation, mirroring claircore's
internal/indexer/postgres layout (store.go holds the struct and Close;
everything else gets its own file named after the method it implements).

Writes run serialized behind a sync.RWMutex held for writing: the Ingestion
Pipeline is the only writer and is already single-threaded per origin, but
IndexVersions calls (periodic ranking refresh) can race an in-flight
IndexLatest for the same crate, so both take the write lock. Reads take the
read lock, which only ever blocks behind an in-flight write, never behind
each other.
*/
package postgres
