package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// RecentlyUpdatedCrates implements store.Reader: crates ordered by their
// last ingestion write, most recent first.
func (s *Store) RecentlyUpdatedCrates(ctx context.Context, limit int) ([]ci.Origin, error) {
	var err error
	defer timeQuery("RecentlyUpdatedCrates")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `SELECT origin FROM crates ORDER BY updated_at DESC LIMIT $1;`
	return queryOrigins(ctx, s.pool, q, limit)
}

// NewCrates implements store.Reader: crates ordered by the publish time of
// their first recorded version, most recent first.
func (s *Store) NewCrates(ctx context.Context, limit int) ([]ci.Origin, error) {
	var err error
	defer timeQuery("NewCrates")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	SELECT c.origin
	FROM crates c
	JOIN (
		SELECT crate_id, min(created_at) AS first_published
		FROM crate_versions
		GROUP BY crate_id
	) first ON first.crate_id = c.id
	ORDER BY first.first_published DESC
	LIMIT $1;`
	return queryOrigins(ctx, s.pool, q, limit)
}

// queryOrigins runs a single-column origin query and parses each row.
func queryOrigins(ctx context.Context, pool *pgxpool.Pool, q string, args ...any) ([]ci.Origin, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query origins: %w", err)
	}
	defer rows.Close()

	var out []ci.Origin
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		o, perr := ci.ParseOrigin(raw)
		if perr != nil {
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
