package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v8"

	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// IndexRepoCrates implements store.Writer.
func (s *Store) IndexRepoCrates(ctx context.Context, repoURL string, mappings []store.RepoCrateMapping) (err error) {
	defer timeQuery("IndexRepoCrates")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin IndexRepoCrates tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM repo_crates WHERE repo_url = $1`, repoURL); err != nil {
		return fmt.Errorf("clear repo_crates: %w", err)
	}
	rows := make([]goqu.Record, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, goqu.Record{"repo_url": repoURL, "path": m.Path, "crate_name": m.Name})
	}
	if sql, err := buildBatchInsert("repo_crates", rows); err != nil {
		return fmt.Errorf("build repo_crates insert: %w", err)
	} else if sql != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("insert repo_crates: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// IndexRepoChanges implements store.Writer.
func (s *Store) IndexRepoChanges(ctx context.Context, repoURL string, changes []store.RepoChange) (err error) {
	defer timeQuery("IndexRepoChanges")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin IndexRepoChanges tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([]goqu.Record, 0, len(changes))
	for _, c := range changes {
		var replacement any
		if c.Kind == store.RepoChangeReplaced {
			replacement = c.Replacement
		}
		rows = append(rows, goqu.Record{
			"repo_url":    repoURL,
			"crate_name":  c.CrateName,
			"replacement": replacement,
			"weight":      c.Weight,
		})
	}
	if sql, err := buildBatchInsert("repo_changes", rows); err != nil {
		return fmt.Errorf("build repo_changes insert: %w", err)
	} else if sql != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("insert repo_changes: %w", err)
		}
	}

	return tx.Commit(ctx)
}
