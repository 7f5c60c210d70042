/*
Package depgraph implements the Dependency Engine:
feature-aware dependency-tree flattening with memoisation, plus the
reverse-dependency statistics roll-up used by the keyword inference engine
(C2's `dep:<name>` weighting) and the crate page's "used by N crates" line.

It reads directly from a mirror.Snapshot rather than the relational store:
the upstream mirror's per-version records already carry the declared
dependency and feature tables, which is exactly what this
package needs and nothing more. Grounded on claircore's internal/cache
weak-reference memoisation pattern (internal/cache/cache.go's Live[K,V]) for
the "shared, ref-counted handle" requirement, and on
golang.org/x/sync/singleflight-style one-shot-cell construction for the
double-checked dependency-stats cell (here hand-rolled with sync.Once since
claircore itself doesn't import singleflight anywhere using this exact
shape).
*/
package depgraph
