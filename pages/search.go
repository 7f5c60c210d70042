package pages

import (
	"context"
	"fmt"

	"github.com/Protryon/lib-rs-mirror-sub000/collab"
)

// searchResultLimit bounds one SERP's result count.
const searchResultLimit = 30

// SearchView is the view model for the search-results page.
type SearchView struct {
	Title string
	Query string
	Hits  []collab.SearchHit
}

// SearchPage builds and renders the search-results page for query. A nil
// st.Search (no full-text index configured) renders an empty result set
// rather than erroring, matching the "full-text search is an external
// collaborator" Non-goal.
func (r *Renderer) SearchPage(ctx context.Context, st *State, query string) (Rendered, error) {
	var hits []collab.SearchHit
	if st.Search != nil {
		var err error
		hits, err = st.Search.Search(ctx, query, searchResultLimit)
		if err != nil {
			return Rendered{}, fmt.Errorf("pages: search page %q: %w", query, err)
		}
	}
	view := SearchView{Title: "Search: " + query, Query: query, Hits: hits}
	b, err := r.render("search", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
