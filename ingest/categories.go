package ingest

import (
	"context"
	"strings"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/rules"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// declaredThreshold/similarityThreshold are the minimum relevance scores
// AdjustedRelevance keeps, for the author-declared-seed and
// similarity-guessed-seed paths respectively. The similarity path runs with
// a lower threshold than the declared path; halving the declared path's
// threshold is this implementation's concrete choice (see DESIGN.md).
const (
	declaredThreshold   = 0.1
	similarityThreshold = 0.05
	maxCategoryResults  = 5
)

// CategorySeedSource supplies the similarity-guessed category seeds used
// when a package declares no valid categories of its own. Narrower than
// store.Reader since this query is ingestion-only; see
// store/postgres.InferredCategorySeeds.
type CategorySeedSource interface {
	InferredCategorySeeds(ctx context.Context, keywords []string) (map[string]float64, error)
}

// ComputeCategories builds category seeds from the manifest's own
// declarations (if any valid ones exist) or from the similarity-guessed
// query, scores them through the rules engine, scales by taxonomy
// preference, and computes rank weights.
//
// Invalid declared-category slugs are returned separately so the caller can
// demote them to ordinary keywords: an invalid declared category is
// demoted to a keyword at ingestion rather than silently dropped.
func ComputeCategories(ctx context.Context, engine *rules.Engine, tree *taxonomy.Tree, seeds CategorySeedSource, manifest ci.Manifest, keywords map[string]struct{}) (categories []ci.CategoryEdge, demoted []string, err error) {
	var seed map[string]float64
	threshold := similarityThreshold

	validDeclared := make([]string, 0, len(manifest.Categories))
	for _, slug := range manifest.Categories {
		fixed := normalizeCategorySlug(slug)
		if fixed != "" && tree.Valid(fixed) {
			validDeclared = append(validDeclared, fixed)
		} else {
			demoted = append(demoted, slug)
		}
	}

	if len(validDeclared) > 0 {
		threshold = declaredThreshold
		n := float64(len(validDeclared))
		catWeight := 10.0 / (9 + n)
		seed = make(map[string]float64, len(validDeclared))
		for i, slug := range validDeclared {
			seed[slug] = 100.0 / (5 + float64(i*i)) * catWeight
		}
	} else if seeds != nil {
		kws := make([]string, 0, len(keywords))
		for k := range keywords {
			kws = append(kws, k)
		}
		seed, err = seeds.InferredCategorySeeds(ctx, kws)
		if err != nil {
			return nil, demoted, err
		}
	}

	scored := engine.AdjustedRelevance(seed, keywords, threshold, maxCategoryResults)
	if len(scored) == 0 {
		return nil, demoted, nil
	}

	edges := make([]ci.CategoryEdge, 0, len(scored))
	for _, s := range scored {
		pref := 1.0
		if node, ok := tree.Lookup(s.Slug); ok {
			pref = node.Preference
		}
		edges = append(edges, ci.CategoryEdge{Slug: s.Slug, Relevance: s.Score * pref})
	}
	return ci.RankWeights(edges), demoted, nil
}

// normalizeCategorySlug fixes up a manifest's raw declared category slug the
// same way the upstream indexer's fixed_category_slugs step does before
// checking it against the taxonomy: lowercased, with any leading/trailing
// "::" trimmed so "GAMES" and "::science::math::" resolve against the tree
// as "games" and "science::math" rather than being demoted to keywords.
func normalizeCategorySlug(slug string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(slug)), ":")
}
