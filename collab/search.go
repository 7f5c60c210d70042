package collab

import (
	"context"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// SearchHit is one result row from a SearchIndex query.
type SearchHit struct {
	Origin      ci.Origin
	Name        string
	Description string
	Score       float64
}

// SearchIndex abstracts over the full-text search index the home and
// search-results pages consult. Construction of the index itself is out of
// scope here; only the query contract the Page Builder (C7) depends on is
// specified.
type SearchIndex interface {
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}
