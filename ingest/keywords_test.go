package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

func TestBuildKeywordInsertAuthorKeywordsAndStopwords(t *testing.T) {
	ki := BuildKeywordInsert(KeywordInputs{
		Manifest: ci.Manifest{
			Name:     "widget",
			Keywords: []string{"library", "widgets"},
		},
	})
	set := ki.Set()
	byKW := make(map[string]ci.KeywordEdge, len(set))
	for _, e := range set {
		byKW[e.Keyword] = e
	}

	require.Contains(t, byKW, "library")
	require.Contains(t, byKW, "widgets")
	// "library" is a stopword: x0.6 relative to its un-dampened sibling's
	// weight formula (100/(6+2*0)=16.67 undampened, 10 dampened).
	require.InDelta(t, 10.0, byKW["library"].Weight, 1e-9)
	require.True(t, byKW["library"].Explicit)
}

func TestBuildKeywordInsertPseudoTags(t *testing.T) {
	ki := BuildKeywordInsert(KeywordInputs{
		Manifest: ci.Manifest{
			Name:    "foo-sys",
			Links:   "libfoo",
			HasBin:  true,
			Runtime: []ci.Dependency{{Name: "serde", Kind: ci.KindNormal}},
		},
		DepStatsWeight: func(string) float64 { return 0.8 },
	})
	present := ki.Keywords()
	require.Contains(t, present, ci.PrefixHas+"is_sys")
	require.Contains(t, present, ci.PrefixHas+"bin")
	require.Contains(t, present, ci.PrefixHas+"cargo-bin")
	require.Contains(t, present, ci.PrefixDep+"serde")
	require.InDelta(t, 0.4, ki.Weight(ci.PrefixDep+"serde"), 1e-9)
}

func TestBuildKeywordInsertRepoAndAuthorIdentity(t *testing.T) {
	ki := BuildKeywordInsert(KeywordInputs{
		Manifest:         ci.Manifest{Name: "foo"},
		CanonicalRepoURL: "https://github.com/example/foo",
		Authors:          []Author{{Name: "Jane Doe"}},
	})
	present := ki.Keywords()
	require.Contains(t, present, ci.PrefixRepo+"https://github.com/example/foo")
	require.Contains(t, present, ci.PrefixBy+"jane-doe")
	require.False(t, ci.Keyword(ci.PrefixBy+"jane-doe").Visible())
}

func TestBuildKeywordInsertSynonymRequiresExistingKeyword(t *testing.T) {
	ki := BuildKeywordInsert(KeywordInputs{
		Manifest: ci.Manifest{Name: "foo", Keywords: []string{"parser"}},
		Synonyms: []Synonym{
			{Keyword: "parser", Term: "parsing", Votes: 10},
			{Keyword: "nonexistent", Term: "whatever", Votes: 10},
		},
	})
	present := ki.Keywords()
	require.Contains(t, present, "parsing")
	require.NotContains(t, present, "whatever")
}

func TestApplyConditionalStopwordsDampensListedTerms(t *testing.T) {
	ki := ci.NewKeywordInsert()
	ki.Add("wasm", 1.0, true)
	ki.Add("web", 1.0, true)
	ki.Add("unrelated", 1.0, true)
	applyConditionalStopwords(ki)
	require.InDelta(t, 1.0/3, ki.Weight("web"), 1e-9)
	require.InDelta(t, 1.0, ki.Weight("unrelated"), 1e-9)
	require.InDelta(t, 1.0, ki.Weight("wasm"), 1e-9)
}

func TestApplyConditionalStopwordsNilListHalvesEverythingElse(t *testing.T) {
	ki := ci.NewKeywordInsert()
	ki.Add("proc-macro", 1.0, true)
	ki.Add("derive", 1.0, true)
	ki.Add("other", 1.0, true)
	applyConditionalStopwords(ki)
	require.InDelta(t, 1.0, ki.Weight("proc-macro"), 1e-9)
	require.InDelta(t, 0.5, ki.Weight("derive"), 1e-9) // "macro" stopword absent, only proc-macro's halving applies
	require.InDelta(t, 0.5, ki.Weight("other"), 1e-9)
}
