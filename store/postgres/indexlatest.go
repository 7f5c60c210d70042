package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v8"
	"github.com/jackc/pgx/v5"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

const upsertCrate = `
INSERT INTO crates (origin, name, manifest, derived, warnings, yanked, next_update, updated_at)
VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7, now())
ON CONFLICT (origin) DO UPDATE SET
	name = EXCLUDED.name,
	manifest = EXCLUDED.manifest,
	derived = EXCLUDED.derived,
	warnings = EXCLUDED.warnings,
	yanked = EXCLUDED.yanked,
	next_update = EXCLUDED.next_update,
	updated_at = now()
RETURNING id;
`

// IndexLatest implements store.Writer.
func (s *Store) IndexLatest(ctx context.Context, data store.CrateVersionData) (err error) {
	defer timeQuery("IndexLatest")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin IndexLatest tx: %w", err)
	}
	defer tx.Rollback(ctx)

	derived := derivedPayload{
		LibraryPath:      data.LibraryPath,
		HasBuildScript:   data.HasBuildScript,
		HasCodeOfConduct: data.HasCodeOfConduct,
		RequiresNightly:  data.RequiresNightly,
		CompressedSize:   data.CompressedSize,
		DecompressedSize: data.DecompressedSize,
		Languages:        data.Languages,
		Readme:           data.Readme,
	}
	manifestJSON, err := json.Marshal(data.Manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	derivedJSON, err := json.Marshal(derived)
	if err != nil {
		return fmt.Errorf("marshal derived: %w", err)
	}
	warningsJSON, err := json.Marshal(data.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	var crateID int64
	row := tx.QueryRow(ctx, upsertCrate,
		data.Origin.String(), data.Name, manifestJSON, derivedJSON, warningsJSON,
		data.Yanked, time.Now().Add(store.NextUpdateInterval))
	if err := row.Scan(&crateID); err != nil {
		return fmt.Errorf("upsert crate: %w", err)
	}

	if err := s.replaceKeywords(ctx, tx, crateID, data.Keywords); err != nil {
		return err
	}
	if err := s.replaceCategories(ctx, tx, crateID, data.Categories); err != nil {
		return err
	}
	if err := s.replaceRepo(ctx, tx, crateID, data.RepoURL); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// derivedPayload is the JSON shape stored in crates.derived.
type derivedPayload struct {
	LibraryPath      string         `json:"library_path,omitempty"`
	HasBuildScript   bool           `json:"has_build_script,omitempty"`
	HasCodeOfConduct bool           `json:"has_code_of_conduct,omitempty"`
	RequiresNightly  bool           `json:"requires_nightly,omitempty"`
	CompressedSize   int64          `json:"compressed_size,omitempty"`
	DecompressedSize int64          `json:"decompressed_size,omitempty"`
	Languages        ci.LanguageLines `json:"languages,omitempty"`
	Readme           *ci.README     `json:"readme,omitempty"`
	InferredKeywords []string       `json:"inferred_keywords,omitempty"`
	InferredCategories []string     `json:"inferred_categories,omitempty"`
	PathInRepo       string         `json:"path_in_repo,omitempty"`
}

func (s *Store) replaceKeywords(ctx context.Context, tx pgx.Tx, crateID int64, kws []ci.KeywordEdge) error {
	if _, err := tx.Exec(ctx, `DELETE FROM crate_keywords WHERE crate_id = $1`, crateID); err != nil {
		return fmt.Errorf("clear crate_keywords: %w", err)
	}
	for _, kw := range kws {
		var keywordID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO keywords (keyword, visible) VALUES ($1, $2)
			ON CONFLICT (keyword) DO UPDATE SET visible = EXCLUDED.visible OR keywords.visible
			RETURNING id;`, kw.Keyword, ci.Keyword(kw.Keyword).Visible()).Scan(&keywordID)
		if err != nil {
			return fmt.Errorf("upsert keyword %q: %w", kw.Keyword, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO crate_keywords (crate_id, keyword_id, weight, explicit)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (crate_id, keyword_id) DO UPDATE SET weight = EXCLUDED.weight, explicit = EXCLUDED.explicit;`,
			crateID, keywordID, kw.Weight, kw.Explicit); err != nil {
			return fmt.Errorf("link keyword %q: %w", kw.Keyword, err)
		}
	}
	return nil
}

func (s *Store) replaceCategories(ctx context.Context, tx pgx.Tx, crateID int64, cats []ci.CategoryEdge) error {
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE crate_id = $1`, crateID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	ranked := ci.RankWeights(cats)
	rows := make([]goqu.Record, 0, len(ranked))
	for _, c := range ranked {
		rows = append(rows, goqu.Record{
			"crate_id":         crateID,
			"slug":             c.Slug,
			"rank_weight":      c.Rank,
			"relevance_weight": c.Relevance,
		})
	}
	sql, err := buildBatchInsert("categories", rows)
	if err != nil {
		return fmt.Errorf("build categories insert: %w", err)
	}
	if sql != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("insert categories: %w", err)
		}
	}
	return nil
}

func (s *Store) replaceRepo(ctx context.Context, tx pgx.Tx, crateID int64, repoURL string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM crate_repos WHERE crate_id = $1`, crateID); err != nil {
		return fmt.Errorf("clear crate_repos: %w", err)
	}
	if repoURL == "" {
		return nil
	}
	if _, err := tx.Exec(ctx, `INSERT INTO crate_repos (crate_id, repo_url) VALUES ($1, $2);`, crateID, repoURL); err != nil {
		return fmt.Errorf("insert crate_repos: %w", err)
	}
	return nil
}
