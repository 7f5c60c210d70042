// Package taxonomy holds the fixed, hand-curated category tree used to
// classify indexed packages.
//
// The tree is read-only once constructed: it is built once at process
// startup from an embedded YAML seed and never mutated afterward, matching
// the "immutable once-initialised value held through a shared pointer"
// pattern used for process-wide state elsewhere in this module.
package taxonomy

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var seedFS embed.FS

// Node is one entry in the category tree.
type Node struct {
	Slug  string `yaml:"-"`
	Title string `yaml:"title"`
	// Description is a short, human-readable summary shown on the category page.
	Description string `yaml:"description"`
	// Preference is a hand-tuned weight, >= 1.0 for specific leaves, that the
	// ingestion pipeline multiplies a category's relevance weight by.
	Preference float64 `yaml:"preference"`
	// Obvious is the set of keywords suppressed from this category's "top
	// keywords" listing because they're definitionally present on every
	// member (e.g. "wasm" under categories::wasm).
	Obvious  map[string]struct{} `yaml:"-"`
	Children map[string]*Node    `yaml:"-"`
	parent   *Node
}

type rawNode struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Preference  float64            `yaml:"preference"`
	ObvRaw      []string           `yaml:"obvious_keywords"`
	Sub         map[string]rawNode `yaml:"sub"`
}

// Tree is the whole taxonomy: a forest of top-level Nodes keyed by slug.
type Tree struct {
	roots map[string]*Node
}

// Load parses the embedded category seed into a Tree.
//
// Load is meant to be called once at startup; the returned Tree is safe for
// concurrent read-only use from any number of goroutines.
func Load() (*Tree, error) {
	b, err := seedFS.ReadFile("categories.yaml")
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read embedded seed: %w", err)
	}
	var doc struct {
		Categories map[string]rawNode `yaml:"categories"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("taxonomy: parse embedded seed: %w", err)
	}
	t := &Tree{roots: make(map[string]*Node, len(doc.Categories))}
	for slug, raw := range doc.Categories {
		t.roots[slug] = build(nil, slug, raw)
	}
	return t, nil
}

func build(parent *Node, slug string, raw rawNode) *Node {
	full := slug
	if parent != nil {
		full = parent.Slug + "::" + slug
	}
	n := &Node{
		Slug:        full,
		Title:       raw.Title,
		Description: raw.Description,
		Preference:  raw.Preference,
		Children:    make(map[string]*Node, len(raw.Sub)),
		parent:      parent,
	}
	if n.Preference == 0 {
		n.Preference = 1.0
	}
	n.Obvious = make(map[string]struct{}, len(raw.ObvRaw))
	for _, k := range raw.ObvRaw {
		n.Obvious[k] = struct{}{}
	}
	for childSlug, childRaw := range raw.Sub {
		n.Children[childSlug] = build(n, childSlug, childRaw)
	}
	return n
}

// Root returns the top-level slug -> Node map.
func (t *Tree) Root() map[string]*Node {
	return t.roots
}

// Parent returns the node's immediate parent, or nil for a root node.
func (n *Node) Parent() *Node {
	return n.parent
}

// FromSlug walks s split on "::", returning every Node visited along the way
// and whether the full slug resolved to a valid node.
//
// A partial path (e.g. "science::math" when only "science" exists) returns
// the nodes visited so far with valid=false; callers use this as a safety
// net to skip rules that target slugs no longer present in the tree.
func (t *Tree) FromSlug(s string) (path []*Node, valid bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, "::")
	cur := t.roots
	for _, p := range parts {
		n, ok := cur[p]
		if !ok {
			return path, false
		}
		path = append(path, n)
		cur = n.Children
	}
	return path, true
}

// Valid reports whether s resolves to a node in the tree.
func (t *Tree) Valid(s string) bool {
	_, ok := t.FromSlug(s)
	return ok
}

// Lookup returns the Node for s, if any.
func (t *Tree) Lookup(s string) (*Node, bool) {
	path, ok := t.FromSlug(s)
	if !ok || len(path) == 0 {
		return nil, false
	}
	return path[len(path)-1], true
}

// Walk visits every node in the tree in an unspecified order.
func (t *Tree) Walk(fn func(*Node)) {
	var rec func(map[string]*Node)
	rec = func(m map[string]*Node) {
		for _, n := range m {
			fn(n)
			rec(n.Children)
		}
	}
	rec(t.roots)
}
