package crateindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankWeights(t *testing.T) {
	edges := []CategoryEdge{
		{Slug: "a", Relevance: 1.0},
		{Slug: "b", Relevance: 0.995},
		{Slug: "c", Relevance: 0.5},
	}
	out := RankWeights(edges)
	assert.InDelta(t, 1.0, out[0].Rank, 1e-9)
	assert.InDelta(t, 0.995, out[1].Rank, 1e-9) // within 1% of max, full factor
	assert.InDelta(t, 0.2, out[2].Rank, 1e-9)   // 0.5 * 0.4
}

func TestFeatureRefParsing(t *testing.T) {
	tt := []struct {
		in   string
		want FeatureRef
	}{
		{"serde", FeatureRef{Feature: "serde"}},
		{"dep:tokio", FeatureRef{Dep: "tokio", Implicit: true}},
		{"tokio/rt", FeatureRef{Dep: "tokio", Feature: "rt"}},
		{"tokio?/rt", FeatureRef{Dep: "tokio", Feature: "rt", Weak: true}},
	}
	for _, tc := range tt {
		assert.Equal(t, tc.want, ParseFeatureRef(tc.in), tc.in)
	}
}
