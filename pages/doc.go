// Package pages assembles and renders the registry index's user-facing
// HTML: one pure function per route, each composing queries against the
// Relational Index (store), the Registry Mirror (mirror), and the
// Dependency Engine (depgraph) into a view model, then rendering it.
//
// Grounded on indexer.Controller's shape (internal/indexer/controller.go):
// a fixed sequence of named stages run against one input, ending in a
// single render call, with partial data (a missing README, absent VCS host
// metadata) tolerated rather than aborting the page.
package pages
