package rules

import (
	"embed"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

//go:embed ruletable.yaml
var embeddedTable embed.FS

// Engine holds an immutable, validated rule table and refinement sequence,
// and the taxonomy used to check slug validity. Build with Load once at
// startup; safe for concurrent read-only use thereafter.
type Engine struct {
	rules      []Rule
	refine     []RefinementStep
	tree       *taxonomy.Tree
}

type tableDoc struct {
	Rules      []rawRule        `yaml:"rules"`
	Refinement []RefinementStep `yaml:"refinement"`
}

// Load parses and validates the embedded rule table against tree.
//
// Load fails (rather than producing "defined but possibly nonsensical
// output") if any rule's action violates mul>=1||add<1e-7, or if an All
// condition exceeds length 4. This is the startup self-test called for by
// the "rule authoring as data" design note.
func Load(tree *taxonomy.Tree) (*Engine, error) {
	b, err := embeddedTable.ReadFile("ruletable.yaml")
	if err != nil {
		return nil, fmt.Errorf("rules: read embedded table: %w", err)
	}
	var doc tableDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("rules: parse embedded table: %w", err)
	}
	rs := make([]Rule, 0, len(doc.Rules))
	for i, raw := range doc.Rules {
		r, err := raw.toRule()
		if err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i, err)
		}
		rs = append(rs, r)
	}
	return &Engine{rules: rs, refine: doc.Refinement, tree: tree}, nil
}

// AdjustedRelevance implements adjusted_relevance.
//
// seed is the caller's prior scores (may be nil/empty). keywords is the
// package's keyword multiset including has:/dep:/feature: pseudo-tags.
func (e *Engine) AdjustedRelevance(seed map[string]float64, keywords map[string]struct{}, minThreshold float64, maxResults int) []ScoredSlug {
	score := make(map[string]float64, len(seed))
	for k, v := range seed {
		score[k] = v
	}

	// Phase A: rule application.
	for _, r := range e.rules {
		strength := r.Cond.strength(keywords)
		if strength <= 0 {
			continue
		}
		for _, a := range r.Actions {
			score[a.Slug] = score[a.Slug]*math.Pow(a.Mul, strength) + a.Add*strength + 1e-6
		}
	}

	// Phase B: cross-category refinement, in literal order.
	for _, step := range e.refine {
		step.apply(score, e.tree)
	}

	// Phase C: selection.
	if len(score) == 0 {
		return nil
	}
	max := 0.0
	for _, v := range score {
		if v > max {
			max = v
		}
	}
	threshold := minThreshold
	if bias := 0.951 * max; bias > threshold {
		threshold = bias
	}

	out := make([]ScoredSlug, 0, len(score))
	for slug, v := range score {
		if v < threshold {
			continue
		}
		if e.tree != nil && !e.tree.Valid(slug) {
			continue
		}
		out = append(out, ScoredSlug{Slug: slug, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Slug < out[j].Slug
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// ScoredSlug is one ranked output of AdjustedRelevance.
type ScoredSlug struct {
	Slug  string
	Score float64
}
