package store

import (
	"context"
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// Reader is the read-side of the Relational Index. The Page Builder (C7)
// calls these; ingestion (C6) also reads "similarity-guessed categories"
// through a narrower path exposed on the Postgres implementation directly
// (see store/postgres.InferredCategorySeeds).
type Reader interface {
	RichCrateVersionData(ctx context.Context, origin ci.Origin) (ci.Manifest, Derived, error)
	TopKeyword(ctx context.Context, origin ci.Origin) (nth int, keyword string, err error)
	TopCategory(ctx context.Context, origin ci.Origin) (nth int, slug string, err error)
	TopCratesInCategory(ctx context.Context, slug string, limit int) ([]ci.Origin, error)
	TopKeywordsInCategory(ctx context.Context, slug string) ([]KeywordStat, error)
	RelatedCrates(ctx context.Context, origin ci.Origin, minRecentDownloads int64) ([]ci.Origin, error)
	RelatedCategories(ctx context.Context, slug string) ([]string, error)
	ReplacementCrates(ctx context.Context, crateName string) ([]ReplacementCandidate, error)
	RecentlyUpdatedCratesInCategory(ctx context.Context, slug string) ([]ci.Origin, error)
	CratesWithKeyword(ctx context.Context, keyword string) (int, error)
	CratesWithKeywordList(ctx context.Context, keyword string, limit int) ([]ci.Origin, error)
	CategoryCrateCounts(ctx context.Context) (map[string]int, error)
	SitemapCrates(ctx context.Context) ([]SitemapEntry, error)
	CratesToReindex(ctx context.Context, now time.Time) ([]ci.Origin, error)
	ParentCrate(ctx context.Context, repoURL, childName string) (ci.Origin, bool, error)
	CratesByOwner(ctx context.Context, githubUserID int64) ([]ci.Origin, error)
	RecentlyUpdatedCrates(ctx context.Context, limit int) ([]ci.Origin, error)
	NewCrates(ctx context.Context, limit int) ([]ci.Origin, error)
}
