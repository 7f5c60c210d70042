package ingest

import (
	"regexp"
	"strings"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// AutoKeyword is one externally-computed (weight, token) pair mined from a
// crate's README/description text. Producing these is out of scope here
// (full-text extraction is a collaborator concern); the pipeline only
// consumes them in the order supplied.
type AutoKeyword struct {
	Weight float64
	Token  string
}

// Synonym is a Stack-Overflow-style alternate spelling for an
// already-inserted keyword, along with the community vote count backing it.
type Synonym struct {
	Keyword string
	Term    string
	Votes   int
}

// Author is one manifest-declared author string, split into name/email
// halves where recoverable.
type Author struct {
	Name  string
	Email string
}

// KeywordInputs bundles everything BuildKeywordInsert needs beyond the raw
// manifest: signals computed elsewhere in the pipeline (reverse-dependency
// stats) or supplied by a collaborator (auto-extracted keywords, synonyms).
type KeywordInputs struct {
	Manifest     ci.Manifest
	CanonicalRepoURL string
	Authors      []Author
	AutoKeywords []AutoKeyword
	Synonyms     []Synonym

	// DepStatsWeight returns a [0,1] popularity score for a direct
	// dependency name, used for the "dep:<name>" pseudo-keyword (the
	// has:is_build/has:is_dev pseudo-tags come from OwnReverseRole instead).
	// nil is treated as "no data", i.e. every dependency scores 0.
	DepStatsWeight func(depName string) float64
	// OwnReverseRole reports whether this crate's own reverse-dependency
	// profile (computed once per mirror generation by depgraph.Engine) is
	// dominated by others depending on it as a build- or dev-dependency,
	// driving the has:is_build/has:is_dev pseudo-tags.
	OwnReverseRole func() (isBuild, isDev bool)
}

// nonAlnum splits a crate name into tokens for the name-token keyword rule.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// stopwords dampens author-declared keywords that are too generic to be
// useful signal on their own (x0.6 weight).
var stopwords = map[string]struct{}{
	"rust": {}, "library": {}, "crate": {}, "utility": {}, "util": {},
	"tool": {}, "cli": {}, "api": {}, "framework": {}, "no-std": {},
}

// conditionalStopwords is a post-processing table: when the trigger keyword
// is present in the accumulator, each listed stopword's weight is divided
// by 3. A nil value halves every other
// keyword's weight instead of targeting specific stopwords. This is a
// representative slice of the full hand-tuned table; entries are added as
// trigger/stopword pairs are identified, the same way the rule table in
// rules/ruletable.yaml grows.
var conditionalStopwords = map[string][]string{
	"wasm":        {"web", "javascript", "browser"},
	"embedded":    {"no-std", "bare-metal"},
	"proc-macro":  nil,
	"derive":      {"macro"},
	"async":       {"futures", "tokio"},
}

// BuildKeywordInsert feeds every weighted keyword source into an
// accumulator in order, then applies the conditional-stopwords pass.
func BuildKeywordInsert(in KeywordInputs) *ci.KeywordInsert {
	ki := ci.NewKeywordInsert()
	m := in.Manifest

	// Author-declared keywords: weight 100/(6+2i), stopwords x0.6.
	for i, raw := range m.Keywords {
		kw, ok := ci.Kebab(raw)
		if !ok {
			continue
		}
		w := 100.0 / (6 + 2*float64(i))
		if _, stop := stopwords[kw]; stop {
			w *= 0.6
		}
		ki.Add(kw, w, true)
	}

	// Name tokens: weight 100/(8+2i).
	for i, tok := range nonAlnum.Split(m.Name, -1) {
		kw, ok := ci.Kebab(tok)
		if !ok {
			continue
		}
		ki.Add(kw, 100.0/(8+2*float64(i)), false)
	}

	// links field (stripped of a leading "lib"), flat weight 0.54.
	if m.Links != "" {
		link := strings.TrimPrefix(m.Links, "lib")
		if kw, ok := ci.Kebab(link); ok {
			ki.Add(kw, 0.54, false)
		}
	}

	// Synonyms: inserted after the declared keywords, name tokens and links
	// token, before every input below; weight = matched keyword's
	// weight x per-synonym relevance (votes/5 + 0.1, capped at 0.8), only
	// if not already present.
	for _, syn := range in.Synonyms {
		if !ki.Has(syn.Keyword) {
			continue
		}
		term, ok := ci.Kebab(syn.Term)
		if !ok || ki.Has(term) {
			continue
		}
		relevance := float64(syn.Votes)/5.0 + 0.1
		if relevance > 0.8 {
			relevance = 0.8
		}
		ki.Add(term, ki.Weight(syn.Keyword)*relevance, false)
	}

	// Auto-extracted keywords: weight w * 150/(80+i).
	for i, ak := range in.AutoKeywords {
		kw, ok := ci.Kebab(ak.Token)
		if !ok {
			continue
		}
		ki.Add(kw, ak.Weight*150.0/(80+float64(i)), false)
	}

	// Feature names (except default/std/nightly) as feature:<name>, 0.55.
	for name := range m.Features {
		switch name {
		case "default", "std", "nightly":
			continue
		}
		ki.Add(ci.PrefixFeature+name, 0.55, false)
	}

	// Pseudo-tags.
	if m.Links != "" || m.HasBuildScript {
		ki.Add(ci.PrefixHas+"is_sys", 1.0, false)
	}
	if m.IsProcMacro {
		ki.Add(ci.PrefixHas+"proc_macro", 1.0, false)
	}
	if m.HasBin {
		ki.Add(ci.PrefixHas+"bin", 1.0, false)
		ki.Add(ci.PrefixHas+"cargo-bin", 1.0, false)
	}
	if in.OwnReverseRole != nil {
		isBuild, isDev := in.OwnReverseRole()
		if isBuild {
			ki.Add(ci.PrefixHas+"is_build", 1.0, false)
		}
		if isDev {
			ki.Add(ci.PrefixHas+"is_dev", 1.0, false)
		}
	}

	// Each direct dependency as dep:<name>, weight dep_stats_weight/2.
	allDeps := append(append(append([]ci.Dependency{}, m.Runtime...), m.Build...), m.Dev...)
	for _, d := range allDeps {
		w := 0.0
		if in.DepStatsWeight != nil {
			w = in.DepStatsWeight(d.Name)
		}
		ki.Add(ci.PrefixDep+strings.ToLower(d.Name), w/2, false)
	}

	// Author identities, low-weight invisible keywords.
	for _, a := range in.Authors {
		if a.Name != "" {
			if kw, ok := ci.Kebab(a.Name); ok {
				ki.Add(ci.PrefixBy+kw, 0.1, false)
			}
		}
		if a.Email != "" {
			if kw, ok := ci.Kebab(a.Email); ok {
				ki.Add(ci.PrefixBy+kw, 0.1, false)
			}
		}
	}

	// repo:<canonical_url> at weight 1.0.
	if in.CanonicalRepoURL != "" {
		ki.Add(ci.PrefixRepo+in.CanonicalRepoURL, 1.0, false)
	}

	applyConditionalStopwords(ki)
	return ki
}

func applyConditionalStopwords(ki *ci.KeywordInsert) {
	present := ki.Keywords()
	for trigger, stops := range conditionalStopwords {
		if _, ok := present[trigger]; !ok {
			continue
		}
		if stops == nil {
			for k := range present {
				if k == trigger {
					continue
				}
				ki.ScaleOne(k, 0.5)
			}
			continue
		}
		for _, s := range stops {
			ki.ScaleOne(s, 1.0/3)
		}
	}
}
