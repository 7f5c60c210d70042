package crateindex

import (
	"strings"
	"unicode"
)

// Keyword is a kebab-case token attached to a package, either surface
// presentable ("visible") or an internal marker.
//
// Internal markers are prefixed "has:", "dep:", "feature:", "by:", or
// "repo:" and are never shown to a user directly; they exist purely to
// drive the inference engine (C2) and similarity queries (C3).
type Keyword string

// Internal marker prefixes.
const (
	PrefixHas     = "has:"
	PrefixDep     = "dep:"
	PrefixFeature = "feature:"
	PrefixBy      = "by:"
	PrefixRepo    = "repo:"
)

// Visible reports whether k is surface-presentable, i.e. carries none of the
// internal marker prefixes.
func (k Keyword) Visible() bool {
	s := string(k)
	for _, p := range []string{PrefixHas, PrefixDep, PrefixFeature, PrefixBy, PrefixRepo} {
		if strings.HasPrefix(s, p) {
			return false
		}
	}
	return true
}

// droppedPrefixes and droppedSuffixes are stripped from a candidate keyword
// before it's stored;
// "rust" and "rs" themselves are never stored as keywords (see Kebab).
var droppedPrefixes = []string{"rust-", "rust_"}
var droppedSuffixes = []string{"-rs", "_rs"}

// Kebab normalises word into the canonical stored keyword form: trimmed,
// lowercased, kebab-cased, with "rust"/"rs" decoration stripped. Returns
// ("", false) if the normalised form is empty or is exactly "rust"/"rs".
func Kebab(word string) (string, bool) {
	w := strings.TrimSpace(word)
	if w == "" {
		return "", false
	}
	var b strings.Builder
	prevDash := false
	for _, r := range w {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	for _, p := range droppedPrefixes {
		s = strings.TrimPrefix(s, p)
	}
	for _, suf := range droppedSuffixes {
		s = strings.TrimSuffix(s, suf)
	}
	s = strings.Trim(s, "-")
	if s == "" || s == "rust" || s == "rs" {
		return "", false
	}
	return s, true
}

// KeywordEdge is a (keyword, package) association.
type KeywordEdge struct {
	Keyword  string  `json:"keyword"`
	Weight   float64 `json:"weight"`
	Explicit bool    `json:"explicit"`
}

// minKeywordWeight is the floor below which a keyword weight is dropped
// entirely.
const minKeywordWeight = 1e-6

// KeywordInsert accumulates weighted keyword candidates for one package
// during ingestion (C6).
type KeywordInsert struct {
	weights map[string]float64
	// explicit records which keys came from the author's own declaration.
	explicit map[string]bool
}

// NewKeywordInsert returns an empty accumulator.
func NewKeywordInsert() *KeywordInsert {
	return &KeywordInsert{
		weights:  make(map[string]float64),
		explicit: make(map[string]bool),
	}
}

// Add adds weight to keyword k, accumulating if k is already present.
func (ki *KeywordInsert) Add(k string, weight float64, explicit bool) {
	if k == "" || weight <= 0 {
		return
	}
	ki.weights[k] += weight
	if explicit {
		ki.explicit[k] = true
	}
}

// Has reports whether k has already been inserted.
func (ki *KeywordInsert) Has(k string) bool {
	_, ok := ki.weights[k]
	return ok
}

// Weight returns the current accumulated weight for k.
func (ki *KeywordInsert) Weight(k string) float64 {
	return ki.weights[k]
}

// Scale multiplies every accumulated keyword's weight by f (used for the
// yanked-package 0.1x global multiplier, and the conditional-stopwords
// halving pass).
func (ki *KeywordInsert) Scale(f float64) {
	for k := range ki.weights {
		ki.weights[k] *= f
	}
}

// ScaleOne multiplies a single keyword's weight by f.
func (ki *KeywordInsert) ScaleOne(k string, f float64) {
	if _, ok := ki.weights[k]; ok {
		ki.weights[k] *= f
	}
}

// Set is the final, pruned set: every entry with weight >= minKeywordWeight.
func (ki *KeywordInsert) Set() []KeywordEdge {
	out := make([]KeywordEdge, 0, len(ki.weights))
	for k, w := range ki.weights {
		if w < minKeywordWeight {
			continue
		}
		out = append(out, KeywordEdge{Keyword: k, Weight: w, Explicit: ki.explicit[k]})
	}
	return out
}

// Keywords returns the set of tokens currently in the accumulator, for
// feeding into the conditional-stopwords trigger check and the rules engine.
func (ki *KeywordInsert) Keywords() map[string]struct{} {
	out := make(map[string]struct{}, len(ki.weights))
	for k := range ki.weights {
		out[k] = struct{}{}
	}
	return out
}
