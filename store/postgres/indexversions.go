package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v8"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// IndexVersions implements store.Writer.
func (s *Store) IndexVersions(ctx context.Context, origin ci.Origin, versions []ci.CrateVersion, ranking float64, recentDownloads int64) (err error) {
	defer timeQuery("IndexVersions")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin IndexVersions tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var crateID int64
	if err := tx.QueryRow(ctx, `
		UPDATE crates SET ranking = $2, recent_downloads = $3, updated_at = now()
		WHERE origin = $1
		RETURNING id;`, origin.String(), ranking, recentDownloads).Scan(&crateID); err != nil {
		return fmt.Errorf("update crate ranking for %s: %w", origin, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM crate_versions WHERE crate_id = $1`, crateID); err != nil {
		return fmt.Errorf("clear crate_versions: %w", err)
	}
	rows := make([]goqu.Record, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, goqu.Record{
			"crate_id":   crateID,
			"version":    v.Num.String(),
			"created_at": v.CreatedAt,
			"yanked":     v.Yanked,
		})
	}
	if sql, err := buildBatchInsert("crate_versions", rows); err != nil {
		return fmt.Errorf("build crate_versions insert: %w", err)
	} else if sql != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("insert crate_versions: %w", err)
		}
	}

	return tx.Commit(ctx)
}
