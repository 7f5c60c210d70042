package pages

import (
	"context"
	"fmt"
)

// KeywordView is the view model for one keyword page.
type KeywordView struct {
	Title      string
	Keyword    string
	CrateCount int
	Crates     []CrateSummary
}

// keywordCratesLimit bounds how many crates are listed on a keyword page;
// full recall lives in the eventual full-text search index (out of scope
// here), not this page.
const keywordCratesLimit = 50

// KeywordPage builds and renders the keyword page. If the keyword has no
// crates, the caller is expected to fall through to the search page;
// KeywordPage itself just reports CrateCount == 0.
func (r *Renderer) KeywordPage(ctx context.Context, st *State, keyword string) (Rendered, error) {
	count, err := st.Reader.CratesWithKeyword(ctx, keyword)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: keyword page %s: %w", keyword, err)
	}
	var crates []CrateSummary
	if count > 0 {
		origins, err := st.Reader.CratesWithKeywordList(ctx, keyword, keywordCratesLimit)
		if err == nil {
			crates = summariesFor(ctx, st, origins)
		}
	}
	view := KeywordView{
		Title:      keyword,
		Keyword:    keyword,
		CrateCount: count,
		Crates:     crates,
	}
	b, err := r.render("keyword", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
