package store

import (
	"context"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// Writer is the write-side of the Relational Index. Only the Ingestion
// Pipeline (C6) calls these.
type Writer interface {
	// IndexLatest performs a single ingestion of one package's latest
	// version: transactional, clears and rewrites that crate's categories
	// and keywords, advances next_update.
	IndexLatest(ctx context.Context, data CrateVersionData) error
	// IndexVersions updates a crate's ranking and version table.
	IndexVersions(ctx context.Context, origin ci.Origin, versions []ci.CrateVersion, ranking float64, recentDownloads int64) error
	// IndexRepoCrates replaces the path->name map for a monorepo.
	IndexRepoCrates(ctx context.Context, repoURL string, mappings []RepoCrateMapping) error
	// IndexRepoChanges appends change records mined from a repo's history.
	IndexRepoChanges(ctx context.Context, repoURL string, changes []RepoChange) error
	// IndexCrateOwners replaces a crate's ownership records.
	IndexCrateOwners(ctx context.Context, origin ci.Origin, owners []CrateOwner) error
}
