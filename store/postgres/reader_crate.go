package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// RichCrateVersionData implements store.Reader.
func (s *Store) RichCrateVersionData(ctx context.Context, origin ci.Origin) (manifest ci.Manifest, derived store.Derived, err error) {
	defer timeQuery("RichCrateVersionData")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var manifestJSON, derivedJSON, warningsJSON []byte
	var repoURL *string
	row := s.pool.QueryRow(ctx, `
		SELECT c.manifest, c.derived, c.warnings, r.repo_url
		FROM crates c
		LEFT JOIN crate_repos r ON r.crate_id = c.id
		WHERE c.origin = $1;`, origin.String())
	if err = row.Scan(&manifestJSON, &derivedJSON, &warningsJSON, &repoURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = &ci.Error{Kind: ci.ErrNotFound, Message: fmt.Sprintf("crate %s not found", origin), Op: "RichCrateVersionData"}
		}
		return ci.Manifest{}, store.Derived{}, err
	}

	if err = json.Unmarshal(manifestJSON, &manifest); err != nil {
		return ci.Manifest{}, store.Derived{}, fmt.Errorf("unmarshal manifest for %s: %w", origin, err)
	}
	var dp derivedPayload
	if err = json.Unmarshal(derivedJSON, &dp); err != nil {
		return ci.Manifest{}, store.Derived{}, fmt.Errorf("unmarshal derived for %s: %w", origin, err)
	}
	var warnings []ci.Warning
	if err = json.Unmarshal(warningsJSON, &warnings); err != nil {
		return ci.Manifest{}, store.Derived{}, fmt.Errorf("unmarshal warnings for %s: %w", origin, err)
	}

	derived = store.Derived{
		InferredKeywords:   dp.InferredKeywords,
		InferredCategories: dp.InferredCategories,
		PathInRepo:         dp.PathInRepo,
		CompressedSize:     dp.CompressedSize,
		DecompressedSize:   dp.DecompressedSize,
		LibraryPath:        dp.LibraryPath,
		HasBuildScript:     dp.HasBuildScript,
		HasCodeOfConduct:   dp.HasCodeOfConduct,
		RequiresNightly:    dp.RequiresNightly,
		Languages:          dp.Languages,
		Readme:             dp.Readme,
		Warnings:           warnings,
	}
	_ = repoURL // repo association surfaced separately via store.Reader.ParentCrate
	return manifest, derived, nil
}

// TopKeyword implements store.Reader: the crate's highest-weighted visible
// keyword and its rank among that keyword's crates (1-indexed).
func (s *Store) TopKeyword(ctx context.Context, origin ci.Origin) (nth int, keyword string, err error) {
	defer timeQuery("TopKeyword")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	WITH target AS (
		SELECT ck.keyword_id, ck.weight
		FROM crate_keywords ck
		JOIN crates c ON c.id = ck.crate_id
		JOIN keywords k ON k.id = ck.keyword_id
		WHERE c.origin = $1 AND k.visible
		ORDER BY ck.weight DESC
		LIMIT 1
	)
	SELECT k.keyword, 1 + count(*) FILTER (WHERE ck2.weight > target.weight)
	FROM target
	JOIN keywords k ON k.id = target.keyword_id
	JOIN crate_keywords ck2 ON ck2.keyword_id = target.keyword_id
	GROUP BY k.keyword;`
	if err = s.pool.QueryRow(ctx, q, origin.String()).Scan(&keyword, &nth); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("top keyword for %s: %w", origin, err)
	}
	return nth, keyword, nil
}

// TopCategory implements store.Reader: analogous to TopKeyword but over
// rank_weight.
func (s *Store) TopCategory(ctx context.Context, origin ci.Origin) (nth int, slug string, err error) {
	defer timeQuery("TopCategory")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	WITH target AS (
		SELECT cat.slug, cat.rank_weight
		FROM categories cat
		JOIN crates c ON c.id = cat.crate_id
		WHERE c.origin = $1
		ORDER BY cat.rank_weight DESC
		LIMIT 1
	)
	SELECT target.slug, 1 + count(*) FILTER (WHERE cat2.rank_weight > target.rank_weight)
	FROM target
	JOIN categories cat2 ON cat2.slug = target.slug
	GROUP BY target.slug;`
	if err = s.pool.QueryRow(ctx, q, origin.String()).Scan(&slug, &nth); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("top category for %s: %w", origin, err)
	}
	return nth, slug, nil
}

// CratesWithKeyword implements store.Reader.
func (s *Store) CratesWithKeyword(ctx context.Context, keyword string) (count int, err error) {
	defer timeQuery("CratesWithKeyword")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT count(*)
	FROM crate_keywords ck
	JOIN keywords k ON k.id = ck.keyword_id
	WHERE k.keyword = $1;`
	if err = s.pool.QueryRow(ctx, q, keyword).Scan(&count); err != nil {
		return 0, fmt.Errorf("count crates with keyword %q: %w", keyword, err)
	}
	return count, nil
}

// CratesWithKeywordList implements store.Reader: the crates carrying
// keyword, highest-weighted first.
func (s *Store) CratesWithKeywordList(ctx context.Context, keyword string, limit int) ([]ci.Origin, error) {
	var err error
	defer timeQuery("CratesWithKeywordList")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM crate_keywords ck
	JOIN crates c ON c.id = ck.crate_id
	JOIN keywords k ON k.id = ck.keyword_id
	WHERE k.keyword = $1
	ORDER BY ck.weight DESC
	LIMIT $2;`
	rows, err := s.pool.Query(ctx, q, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("crates with keyword %q: %w", keyword, err)
	}
	defer rows.Close()

	var out []ci.Origin
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		o, perr := ci.ParseOrigin(raw)
		if perr != nil {
			continue
		}
		out = append(out, o)
	}
	err = rows.Err()
	return out, err
}

// CratesToReindex implements store.Reader.
func (s *Store) CratesToReindex(ctx context.Context, now time.Time) ([]ci.Origin, error) {
	var err error
	defer timeQuery("CratesToReindex")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT origin FROM crates
	WHERE next_update <= $1
	ORDER BY next_update ASC
	LIMIT $2;`
	rows, err := s.pool.Query(ctx, q, now, store.ReindexBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("query crates to reindex: %w", err)
	}
	defer rows.Close()

	var out []ci.Origin
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		o, perr := ci.ParseOrigin(raw)
		if perr != nil {
			continue
		}
		out = append(out, o)
	}
	err = rows.Err()
	return out, err
}
