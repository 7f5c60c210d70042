package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// ReplacementCrates implements store.Reader: crates repo history has
// recorded as replacements for crateName, above the noise threshold.
func (s *Store) ReplacementCrates(ctx context.Context, crateName string) ([]store.ReplacementCandidate, error) {
	var err error
	defer timeQuery("ReplacementCrates")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT replacement, sum(weight) AS total
	FROM repo_changes
	WHERE crate_name = $1 AND replacement IS NOT NULL
	GROUP BY replacement
	HAVING sum(weight) >= $2
	ORDER BY total DESC;`
	rows, err := s.pool.Query(ctx, q, crateName, store.ReplacementWeightThreshold)
	if err != nil {
		return nil, fmt.Errorf("replacement crates for %q: %w", crateName, err)
	}
	defer rows.Close()

	var out []store.ReplacementCandidate
	for rows.Next() {
		var rc store.ReplacementCandidate
		if err = rows.Scan(&rc.Name, &rc.Weight); err != nil {
			return nil, fmt.Errorf("scan replacement candidate: %w", err)
		}
		out = append(out, rc)
	}
	err = rows.Err()
	return out, err
}

// ParentCrate implements store.Reader: the monorepo crate that owns
// childName under repoURL, if any.
func (s *Store) ParentCrate(ctx context.Context, repoURL, childName string) (ci.Origin, bool, error) {
	var err error
	defer timeQuery("ParentCrate")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM repo_crates rc
	JOIN crate_repos cr ON cr.repo_url = rc.repo_url
	JOIN crates c ON c.id = cr.crate_id
	WHERE rc.repo_url = $1 AND rc.crate_name = $2
	LIMIT 1;`
	var raw string
	if err = s.pool.QueryRow(ctx, q, repoURL, childName).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ci.Origin{}, false, nil
		}
		return ci.Origin{}, false, fmt.Errorf("parent crate for %s/%s: %w", repoURL, childName, err)
	}
	o, perr := ci.ParseOrigin(raw)
	if perr != nil {
		return ci.Origin{}, false, fmt.Errorf("parse parent origin %q: %w", raw, perr)
	}
	return o, true, nil
}

// CratesByOwner implements store.Reader: every crate githubUserID is
// recorded as an owner of.
func (s *Store) CratesByOwner(ctx context.Context, githubUserID int64) ([]ci.Origin, error) {
	var err error
	defer timeQuery("CratesByOwner")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM author_crates ac
	JOIN crates c ON c.id = ac.crate_id
	WHERE ac.github_id = $1
	ORDER BY c.origin;`
	rows, err := s.pool.Query(ctx, q, githubUserID)
	if err != nil {
		return nil, fmt.Errorf("crates by owner %d: %w", githubUserID, err)
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

// SitemapCrates implements store.Reader.
func (s *Store) SitemapCrates(ctx context.Context) ([]store.SitemapEntry, error) {
	var err error
	defer timeQuery("SitemapCrates")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT origin, ranking, updated_at
	FROM crates
	WHERE ranking >= $1
	ORDER BY ranking DESC;`
	rows, err := s.pool.Query(ctx, q, store.MinSitemapRank)
	if err != nil {
		return nil, fmt.Errorf("sitemap crates: %w", err)
	}
	defer rows.Close()

	var out []store.SitemapEntry
	for rows.Next() {
		var raw string
		var entry store.SitemapEntry
		if err = rows.Scan(&raw, &entry.Rank, &entry.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan sitemap entry: %w", err)
		}
		o, perr := ci.ParseOrigin(raw)
		if perr != nil {
			continue
		}
		entry.Origin = o
		out = append(out, entry)
	}
	err = rows.Err()
	return out, err
}
