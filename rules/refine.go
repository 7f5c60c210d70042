package rules

import "github.com/Protryon/lib-rs-mirror-sub000/taxonomy"

// RefinementStep is one cross-category disambiguation operation (phase B of
// this design). The ordered sequence of steps is part of this design itself
// and encodes hand-tuned domain judgement about which category pairs
// conflict; implementations must run it in literal order and must not
// commute or reorder steps.
type RefinementStep struct {
	Kind string `yaml:"kind"` // "if_this_then_not_that", "either_or_category", "relate_subcategory_candidates"
	A    string `yaml:"a,omitempty"`
	B    string `yaml:"b,omitempty"`
}

const (
	KindIfThisThenNotThat          = "if_this_then_not_that"
	KindEitherOrCategory           = "either_or_category"
	KindRelateSubcategoryCandidate = "relate_subcategory_candidates"
)

// apply runs one refinement step against score in place.
func (s RefinementStep) apply(score map[string]float64, tree *taxonomy.Tree) {
	switch s.Kind {
	case KindIfThisThenNotThat:
		ifThisThenNotThat(score, s.A, s.B)
	case KindEitherOrCategory:
		eitherOrCategory(score, s.A, s.B)
	case KindRelateSubcategoryCandidate:
		relateSubcategoryCandidates(score, tree)
	}
}

// ifThisThenNotThat: if score[A] > 0, decrement score[B] by
// min(score[A], score[B]/3). Never negative.
func ifThisThenNotThat(score map[string]float64, a, b string) {
	sa := score[a]
	if sa <= 0 {
		return
	}
	sb := score[b]
	dec := sa
	if sb/3 < dec {
		dec = sb / 3
	}
	sb -= dec
	if sb < 0 {
		sb = 0
	}
	score[b] = sb
}

// eitherOrCategory: if score[A]*0.66 > score[B], transfer A += B/2; B *= 0.5.
// Symmetric in the other direction.
func eitherOrCategory(score map[string]float64, a, b string) {
	sa, sb := score[a], score[b]
	switch {
	case sa*0.66 > sb:
		score[a] = sa + sb/2
		score[b] = sb * 0.5
	case sb*0.66 > sa:
		score[b] = sb + sa/2
		score[a] = sa * 0.5
	}
}

// relateSubcategoryCandidates recursively walks the taxonomy. For each node
// with a score, add min(existing, propagated-from-parent) (capping at
// doubling it), propagating score/2 down to children and pulling back
// max(children)/6 to the parent.
func relateSubcategoryCandidates(score map[string]float64, tree *taxonomy.Tree) {
	if tree == nil {
		return
	}
	var walk func(nodes map[string]*taxonomy.Node, parentPropagated float64)
	walk = func(nodes map[string]*taxonomy.Node, parentPropagated float64) {
		for _, n := range nodes {
			slug := n.Slug
			if s, ok := score[slug]; ok {
				add := s
				if parentPropagated < add {
					add = parentPropagated
				}
				score[slug] = s + add
			}
			childPropagated := score[slug] / 2
			walk(n.Children, childPropagated)

			maxChild := 0.0
			for _, c := range n.Children {
				if cs, ok := score[c.Slug]; ok && cs > maxChild {
					maxChild = cs
				}
			}
			if maxChild > 0 {
				score[slug] += maxChild / 6
			}
		}
	}
	walk(tree.Root(), 0)
}
