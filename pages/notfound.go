package pages

import "context"

// notFoundSuggestionLimit bounds the "did you mean" listing.
const notFoundSuggestionLimit = 5

// NotFoundView is the view model for the 404 page.
type NotFoundView struct {
	Title       string
	Path        string
	Suggestions []CrateSummary
}

// NotFoundPage builds and renders the 404 page for the request path that
// didn't resolve. attemptedQuery is whatever token the router extracted
// from the path (a crate name, keyword, or category slug) to use as a
// search seed; an empty string yields a suggestion-free page.
func (r *Renderer) NotFoundPage(ctx context.Context, st *State, path, attemptedQuery string) (Rendered, error) {
	var suggestions []CrateSummary
	if st.Search != nil && attemptedQuery != "" {
		hits, err := st.Search.Search(ctx, attemptedQuery, notFoundSuggestionLimit)
		if err == nil {
			suggestions = make([]CrateSummary, len(hits))
			for i, h := range hits {
				suggestions[i] = CrateSummary{Origin: h.Origin, Name: h.Name, Description: h.Description}
			}
		}
	}
	view := NotFoundView{Title: "Not found", Path: path, Suggestions: suggestions}
	b, err := r.render("notfound", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
