package pages

import (
	"html/template"
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// Rendered is the output of one page-builder function: the HTML bytes plus
// the timestamp the page cache (C8) persists alongside them to decide
// freshness and to compute a Last-Modified header.
type Rendered struct {
	Bytes        []byte
	LastModified time.Time
}

// CrateSummary is the compact form of a crate used in listings (category
// page, keyword page, author page, home, search results).
type CrateSummary struct {
	Origin      ci.Origin
	Name        string
	Description string
	Ranking     float64
}

// CategorySummary is a category listed on the home page or a parent
// category's child list.
type CategorySummary struct {
	Slug        string
	Title       string
	Description string
	CrateCount  int
}

// KeywordListEntry is one row of a category page's "top keywords" panel.
type KeywordListEntry struct {
	Keyword string
	Weight  float64
}

// VersionSummary is one published version, as shown on a crate page's
// version history panel. The registry mirror's wire format (collab.
// VCSCheckout aside) carries no publish timestamp, so only the version
// string and yanked flag are available here.
type VersionSummary struct {
	Num    string
	Yanked bool
}

// ReverseDepEntry is one role/count row of a crate page's reverse
// dependency summary.
type ReverseDepEntry struct {
	Role     string // "normal", "build", "dev"
	Default  int
	Optional int
}

// NotFoundReason distinguishes why a 404 page is being rendered, purely for
// the message shown; it carries no behavioral branching.
type NotFoundReason string

const (
	NotFoundNoOrigin      NotFoundReason = "no-such-crate"
	NotFoundNoCategory    NotFoundReason = "no-such-category"
	NotFoundNoKeyword     NotFoundReason = "no-such-keyword"
	NotFoundRouteMismatch NotFoundReason = "route-mismatch"
)

// readmeHTML returns r's text as safe HTML when it was already rendered by
// a README-fetching collaborator (Markup == "html"); otherwise the markup
// source is shown verbatim, HTML-escaped, since rendering markdown/rst to
// HTML is explicitly out of scope for this module.
func readmeHTML(r *ci.README) template.HTML {
	if r == nil {
		return ""
	}
	if r.Markup == "html" {
		return template.HTML(r.Text)
	}
	return template.HTML("<pre>" + template.HTMLEscapeString(r.Text) + "</pre>")
}
