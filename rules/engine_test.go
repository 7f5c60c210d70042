package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	tree, err := taxonomy.Load()
	require.NoError(t, err)
	e, err := Load(tree)
	require.NoError(t, err)
	return e
}

func kwset(ks ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ks))
	for _, k := range ks {
		m[k] = struct{}{}
	}
	return m
}

func TestWasmKeywordDampensEmbedded(t *testing.T) {
	e := mustEngine(t)
	out := e.AdjustedRelevance(nil, kwset("wasm"), 0.1, 5)
	require.NotEmpty(t, out)
	assert.Equal(t, "wasm", out[0].Slug)
	for _, s := range out {
		assert.NotEqual(t, "embedded", s.Slug)
	}
}

func TestEmptyKeywordsEmptyResult(t *testing.T) {
	e := mustEngine(t)
	out := e.AdjustedRelevance(nil, kwset(), 0.1, 5)
	assert.Empty(t, out)
}

func TestDominanceInvariant(t *testing.T) {
	e := mustEngine(t)
	out := e.AdjustedRelevance(nil, kwset("http-client", "reqwest", "serde", "async"), 0, 10)
	require.NotEmpty(t, out)
	max := out[0].Score
	for _, s := range out {
		assert.GreaterOrEqual(t, s.Score, 0.951*max)
	}
}

func TestMonotonicityUnrelatedKeywordIsNoOp(t *testing.T) {
	e := mustEngine(t)
	base := e.AdjustedRelevance(nil, kwset("postgres", "serde"), 0.1, 10)
	withExtra := e.AdjustedRelevance(nil, kwset("postgres", "serde", "zzzz-totally-unique-token-42"), 0.1, 10)
	require.Equal(t, len(base), len(withExtra))
	for i := range base {
		assert.Equal(t, base[i].Slug, withExtra[i].Slug)
	}
}

func TestMaxResultsTruncates(t *testing.T) {
	e := mustEngine(t)
	out := e.AdjustedRelevance(nil, kwset("postgres", "sqlite", "async", "http-client", "cli", "test"), 0, 2)
	assert.LessOrEqual(t, len(out), 2)
}

func TestInvalidSlugsAreDropped(t *testing.T) {
	e := mustEngine(t)
	out := e.AdjustedRelevance(map[string]float64{"not-a-real-slug": 5}, kwset(), 0, 5)
	for _, s := range out {
		assert.NotEqual(t, "not-a-real-slug", s.Slug)
	}
}
