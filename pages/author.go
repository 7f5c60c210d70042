package pages

import (
	"context"
	"fmt"
)

// AuthorView is the view model for one author page.
type AuthorView struct {
	Title  string
	Login  string
	Crates []CrateSummary
}

// AuthorPage builds and renders the author page for login.
//
// Login-to-account resolution is delegated to st.Identity; a nil resolver
// or an unresolved login yields an empty crate list rather than an error,
// since identity merging across logins is out of scope.
func (r *Renderer) AuthorPage(ctx context.Context, st *State, login string) (Rendered, error) {
	view := AuthorView{Title: "~" + login, Login: login}

	if st.Identity != nil {
		id, ok, err := st.Identity.ResolveLogin(ctx, login)
		if err != nil {
			return Rendered{}, fmt.Errorf("pages: author page %s: %w", login, err)
		}
		if ok {
			origins, err := st.Reader.CratesByOwner(ctx, id)
			if err != nil {
				return Rendered{}, fmt.Errorf("pages: author page %s: %w", login, err)
			}
			view.Crates = summariesFor(ctx, st, origins)
		}
	}

	b, err := r.render("author", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
