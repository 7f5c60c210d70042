package postgres

import (
	"context"
	"fmt"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// TopCratesInCategory implements store.Reader.
func (s *Store) TopCratesInCategory(ctx context.Context, slug string, limit int) ([]ci.Origin, error) {
	var err error
	defer timeQuery("TopCratesInCategory")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM categories cat
	JOIN crates c ON c.id = cat.crate_id
	WHERE cat.slug = $1
	ORDER BY cat.rank_weight DESC, c.ranking DESC
	LIMIT $2;`
	rows, err := s.pool.Query(ctx, q, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("top crates in category %q: %w", slug, err)
	}
	defer rows.Close()
	return scanOrigins(rows)
}

// TopKeywordsInCategory implements store.Reader: the keywords most strongly
// associated with crates in slug, by summed weight.
func (s *Store) TopKeywordsInCategory(ctx context.Context, slug string) ([]store.KeywordStat, error) {
	var err error
	defer timeQuery("TopKeywordsInCategory")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT k.keyword, sum(ck.weight) AS total
	FROM categories cat
	JOIN crate_keywords ck ON ck.crate_id = cat.crate_id
	JOIN keywords k ON k.id = ck.keyword_id
	WHERE cat.slug = $1 AND k.visible
	GROUP BY k.keyword
	ORDER BY total DESC
	LIMIT 20;`
	rows, err := s.pool.Query(ctx, q, slug)
	if err != nil {
		return nil, fmt.Errorf("top keywords in category %q: %w", slug, err)
	}
	defer rows.Close()

	var out []store.KeywordStat
	for rows.Next() {
		var ks store.KeywordStat
		if err = rows.Scan(&ks.Keyword, &ks.Weight); err != nil {
			return nil, fmt.Errorf("scan keyword stat: %w", err)
		}
		out = append(out, ks)
	}
	err = rows.Err()
	return out, err
}

// RelatedCategories implements store.Reader: categories that most often
// co-occur with slug on the same crate, excluding slug itself.
func (s *Store) RelatedCategories(ctx context.Context, slug string) ([]string, error) {
	var err error
	defer timeQuery("RelatedCategories")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT other.slug, count(*) AS co_occurrences
	FROM categories target
	JOIN categories other ON other.crate_id = target.crate_id AND other.slug <> target.slug
	WHERE target.slug = $1
	GROUP BY other.slug
	ORDER BY co_occurrences DESC, other.slug ASC
	LIMIT 10;`
	rows, err := s.pool.Query(ctx, q, slug)
	if err != nil {
		return nil, fmt.Errorf("related categories for %q: %w", slug, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slug string
		var n int
		if err = rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("scan related category: %w", err)
		}
		out = append(out, slug)
	}
	err = rows.Err()
	return out, err
}

// CategoryCrateCounts implements store.Reader.
func (s *Store) CategoryCrateCounts(ctx context.Context) (map[string]int, error) {
	var err error
	defer timeQuery("CategoryCrateCounts")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `SELECT slug, count(*) FROM categories GROUP BY slug;`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("category crate counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var slug string
		var n int
		if err = rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out[slug] = n
	}
	err = rows.Err()
	return out, err
}

// RecentlyUpdatedCratesInCategory implements store.Reader.
func (s *Store) RecentlyUpdatedCratesInCategory(ctx context.Context, slug string) ([]ci.Origin, error) {
	var err error
	defer timeQuery("RecentlyUpdatedCratesInCategory")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM categories cat
	JOIN crates c ON c.id = cat.crate_id
	WHERE cat.slug = $1
	ORDER BY c.updated_at DESC
	LIMIT 15;`
	rows, err := s.pool.Query(ctx, q, slug)
	if err != nil {
		return nil, fmt.Errorf("recently updated crates in %q: %w", slug, err)
	}
	defer rows.Close()
	return scanOrigins(rows)
}
