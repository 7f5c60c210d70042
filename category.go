package crateindex

// CategoryEdge is a (package, category) association produced by the
// inference engine (C2) or the author's own declaration.
type CategoryEdge struct {
	Slug      string  `json:"slug"`
	Relevance float64 `json:"relevance_weight"`
	Rank      float64 `json:"rank_weight"`
}

// RankWeights computes the rank_weight for a set of scored category edges:
// relevance / max * (1 if within 1% of max else 0.4).
func RankWeights(edges []CategoryEdge) []CategoryEdge {
	if len(edges) == 0 {
		return edges
	}
	max := edges[0].Relevance
	for _, e := range edges[1:] {
		if e.Relevance > max {
			max = e.Relevance
		}
	}
	if max <= 0 {
		return edges
	}
	out := make([]CategoryEdge, len(edges))
	for i, e := range edges {
		norm := e.Relevance / max
		factor := 0.4
		if e.Relevance >= 0.99*max {
			factor = 1.0
		}
		out[i] = CategoryEdge{Slug: e.Slug, Relevance: e.Relevance, Rank: norm * factor}
	}
	return out
}
