package pages

import "context"

// homeListLimit bounds the "new" and "recently updated" home-page panels.
const homeListLimit = 10

// HomeView is the view model for the home page.
type HomeView struct {
	Title           string
	New             []CrateSummary
	RecentlyUpdated []CrateSummary
	Categories      []CategorySummary
	TotalCrates     int
}

// HomePage builds and renders the home page.
func (r *Renderer) HomePage(ctx context.Context, st *State) (Rendered, error) {
	newOrigins, err := st.Reader.NewCrates(ctx, homeListLimit)
	if err != nil {
		newOrigins = nil
	}
	recentOrigins, err := st.Reader.RecentlyUpdatedCrates(ctx, homeListLimit)
	if err != nil {
		recentOrigins = nil
	}
	counts, err := st.Reader.CategoryCrateCounts(ctx)
	if err != nil {
		counts = nil
	}

	cats := make([]CategorySummary, 0, len(st.Taxonomy.Root()))
	for slug, node := range st.Taxonomy.Root() {
		cats = append(cats, CategorySummary{
			Slug:        slug,
			Title:       node.Title,
			Description: node.Description,
			CrateCount:  counts[node.Slug],
		})
	}

	view := HomeView{
		Title:           "Registry Index",
		New:             summariesFor(ctx, st, newOrigins),
		RecentlyUpdated: summariesFor(ctx, st, recentOrigins),
		Categories:      cats,
		TotalCrates:     st.TotalCrates,
	}
	b, err := r.render("home", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
