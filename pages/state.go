package pages

import (
	"github.com/Protryon/lib-rs-mirror-sub000/collab"
	"github.com/Protryon/lib-rs-mirror-sub000/depgraph"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// State is everything one page render needs a consistent view of. The
// server (C8) builds a new State on every mirror reload and swaps it
// behind an atomic pointer; a single render call always sees one
// generation's worth of mirror, dependency engine, and taxonomy, even if a
// reload completes mid-render.
type State struct {
	Reader   store.Reader
	Mirror   *mirror.Snapshot
	Deps     *depgraph.Engine
	Taxonomy *taxonomy.Tree
	// Hosts is nil-safe: a nil Hosts means "no VCS host metadata available",
	// not an error, matching collab.VCSHostMetadata's own "failures are
	// non-fatal" contract.
	Hosts collab.VCSHostMetadata
	// Search is nil-safe: a nil Search means the search-results and 404
	// suggestion lists degrade to empty rather than erroring.
	Search collab.SearchIndex
	// Identity is nil-safe: a nil Identity means author pages render with
	// an empty crate list rather than erroring.
	Identity collab.IdentityResolver
	// TotalCrates is the crate count substituted for $TOTAL_CRATE_NUM on
	// static pages.
	TotalCrates int
}

// NewState bundles the per-generation collaborators into a State.
func NewState(r store.Reader, snap *mirror.Snapshot, deps *depgraph.Engine, tree *taxonomy.Tree, hosts collab.VCSHostMetadata, search collab.SearchIndex, identity collab.IdentityResolver) *State {
	return &State{Reader: r, Mirror: snap, Deps: deps, Taxonomy: tree, Hosts: hosts, Search: search, Identity: identity, TotalCrates: snap.Len()}
}
