package pages

import (
	"context"
	"fmt"

	"github.com/Protryon/lib-rs-mirror-sub000/store"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// CategoryView is the view model for one category page.
type CategoryView struct {
	Title       string
	Slug        string
	Description string

	Subcategories     []CategorySummary
	TopCrates         []CrateSummary
	RecentlyUpdated   []CrateSummary
	TopKeywords       []KeywordListEntry
	RelatedCategories []string
}

// categoryTopCratesLimit bounds TopCratesInCategory's listing size.
const categoryTopCratesLimit = 20

// CategoryPage builds and renders the category page for slug.
func (r *Renderer) CategoryPage(ctx context.Context, st *State, slug string) (Rendered, error) {
	node, ok := st.Taxonomy.Lookup(slug)
	if !ok {
		return Rendered{}, fmt.Errorf("pages: category page %s: node not found", slug)
	}

	counts, err := st.Reader.CategoryCrateCounts(ctx)
	if err != nil {
		counts = nil
	}

	subs := make([]CategorySummary, 0, len(node.Children))
	for childSlug, child := range node.Children {
		subs = append(subs, CategorySummary{
			Slug:        childSlug,
			Title:       child.Title,
			Description: child.Description,
			CrateCount:  counts[child.Slug],
		})
	}

	top, err := st.Reader.TopCratesInCategory(ctx, slug, categoryTopCratesLimit)
	var topCrates []CrateSummary
	if err == nil {
		topCrates = summariesFor(ctx, st, top)
	}

	recent, err := st.Reader.RecentlyUpdatedCratesInCategory(ctx, slug)
	var recentCrates []CrateSummary
	if err == nil {
		recentCrates = summariesFor(ctx, st, recent)
	}

	keywordStats, err := st.Reader.TopKeywordsInCategory(ctx, slug)
	var topKeywords []KeywordListEntry
	if err == nil {
		topKeywords = keywordEntries(keywordStats, node)
	}

	related, err := st.Reader.RelatedCategories(ctx, slug)
	if err != nil {
		related = nil
	}

	view := CategoryView{
		Title:             node.Title,
		Slug:              node.Slug,
		Description:       node.Description,
		Subcategories:     subs,
		TopCrates:         topCrates,
		RecentlyUpdated:   recentCrates,
		TopKeywords:       topKeywords,
		RelatedCategories: related,
	}
	b, err := r.render("category", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}

// keywordEntries filters out node's "obvious" keywords (definitionally
// present on every member, so not informative in a top-keywords panel).
func keywordEntries(stats []store.KeywordStat, node *taxonomy.Node) []KeywordListEntry {
	out := make([]KeywordListEntry, 0, len(stats))
	for _, s := range stats {
		if _, obvious := node.Obvious[s.Keyword]; obvious {
			continue
		}
		out = append(out, KeywordListEntry{Keyword: s.Keyword, Weight: s.Weight})
	}
	return out
}
