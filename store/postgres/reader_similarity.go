package postgres

import (
	"context"
	"fmt"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// RelatedCrates implements store.Reader: crates sharing the most weighted
// keywords with origin, restricted to crates with at least minRecentDownloads
// recent downloads so obscure noise doesn't dominate the ranking.
//
// Grounded on the keyword-overlap "related crates" design in this design's
// key-algorithms note; expressed as a self-join over crate_keywords weighted
// by the product of both crates' weights for the shared keyword, which is
// the standard cosine-numerator shape for sparse weighted-set similarity.
func (s *Store) RelatedCrates(ctx context.Context, origin ci.Origin, minRecentDownloads int64) ([]ci.Origin, error) {
	var err error
	defer timeQuery("RelatedCrates")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	WITH target AS (
		SELECT ck.keyword_id, ck.weight
		FROM crate_keywords ck
		JOIN crates c ON c.id = ck.crate_id
		JOIN keywords k ON k.id = ck.keyword_id
		WHERE c.origin = $1 AND k.visible
	)
	SELECT c.origin, sum(target.weight * ck.weight) AS score
	FROM target
	JOIN crate_keywords ck ON ck.keyword_id = target.keyword_id
	JOIN crates c ON c.id = ck.crate_id
	WHERE c.origin <> $1 AND c.recent_downloads >= $2
	GROUP BY c.origin
	ORDER BY score DESC
	LIMIT 10;`
	rows, err := s.pool.Query(ctx, q, origin.String(), minRecentDownloads)
	if err != nil {
		return nil, fmt.Errorf("related crates for %s: %w", origin, err)
	}
	defer rows.Close()
	return scanOriginsWithScore(rows)
}

func scanOriginsWithScore(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]ci.Origin, error) {
	var out []ci.Origin
	for rows.Next() {
		var raw string
		var score float64
		if err := rows.Scan(&raw, &score); err != nil {
			return nil, fmt.Errorf("scan related crate: %w", err)
		}
		o, err := ci.ParseOrigin(raw)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// InferredCategorySeeds returns every category found on crates carrying any
// of keywords, each scored by the sum of keyword weight x category
// relevance weight over those crates. Scores are not normalised, keyword
// visibility is not checked, and the result is not cut to a top-N. The Ingestion
// Pipeline (C6) uses this as the seed map fed into rules.Engine.AdjustedRelevance
// when a package declares no categories of its own.
//
// This is exposed directly on *Store rather than through store.Reader
// because it's an ingestion-only concern, not a page-serving query.
func (s *Store) InferredCategorySeeds(ctx context.Context, keywords []string) (map[string]float64, error) {
	var err error
	defer timeQuery("InferredCategorySeeds")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(keywords) == 0 {
		return map[string]float64{}, nil
	}
	const q = `
	SELECT cat.slug, sum(ck.weight * cat.relevance_weight) AS score
	FROM keywords k
	JOIN crate_keywords ck ON ck.keyword_id = k.id
	JOIN categories cat ON cat.crate_id = ck.crate_id
	WHERE k.keyword = ANY($1)
	GROUP BY cat.slug;`
	rows, err := s.pool.Query(ctx, q, keywords)
	if err != nil {
		return nil, fmt.Errorf("inferred category seeds: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var slug string
		var score float64
		if err = rows.Scan(&slug, &score); err != nil {
			return nil, fmt.Errorf("scan inferred seed: %w", err)
		}
		out[slug] = score
	}
	err = rows.Err()
	return out, err
}
