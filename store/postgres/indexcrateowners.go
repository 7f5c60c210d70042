package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v8"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// IndexCrateOwners implements store.Writer.
func (s *Store) IndexCrateOwners(ctx context.Context, origin ci.Origin, owners []store.CrateOwner) (err error) {
	defer timeQuery("IndexCrateOwners")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin IndexCrateOwners tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var crateID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM crates WHERE origin = $1`, origin.String()).Scan(&crateID); err != nil {
		return fmt.Errorf("lookup crate %s: %w", origin, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM author_crates WHERE crate_id = $1`, crateID); err != nil {
		return fmt.Errorf("clear author_crates: %w", err)
	}
	names := make([]string, 0, len(owners))
	rows := make([]goqu.Record, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, goqu.Record{
			"github_id":  o.GithubUserID,
			"crate_id":   crateID,
			"invited_by": o.InvitedBy,
			"invited_at": o.InvitedAt,
		})
		names = append(names, strconv.FormatInt(o.GithubUserID, 10))
	}
	if sql, err := buildBatchInsert("author_crates", rows); err != nil {
		return fmt.Errorf("build author_crates insert: %w", err)
	} else if sql != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("insert author_crates: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE crates SET owners = $2 WHERE id = $1;`, crateID, names); err != nil {
		return fmt.Errorf("update crates.owners: %w", err)
	}

	return tx.Commit(ctx)
}
