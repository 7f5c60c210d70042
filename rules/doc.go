// Package rules implements the category inference engine:
// a two-phase scorer that turns a package's keyword multiset into a ranked
// list of taxonomy category slugs.
//
// Grounding: the engine itself (phased scoring over a data-driven rule
// table) has no direct analogue in claircore; it's modelled on claircore's
// "rule authoring as data" idiom used for matcher/updater
// factories (`matchers/registry`, `internal/updater`'s registered-factory
// pattern: a table of named, self-describing entries loaded once and
// iterated, never hand-coded as a chain of if-statements) and on its
// "assert invariants at startup, not at call time" convention
// (`libvuln.New`'s option validation). The rule table itself is new
// domain content, expressed as an embedded YAML data
// file to keep rule changes out of compiled code. `gopkg.in/yaml.v3` is
// the same out-of-pack dependency used for `taxonomy/categories.yaml`.
package rules
