package collab

import (
	"context"
	"time"
)

// VCSHandle is an opaque, implementation-owned checkout handle (e.g. a path
// to a local git clone).
type VCSHandle any

// FoundManifest is one manifest discovered while walking a checkout.
type FoundManifest struct {
	Path     string // path within the repo, e.g. "crates/foo"
	TreeID   string // VCS-specific content identifier, used for change detection
	Manifest []byte // raw manifest bytes; the caller parses these
}

// DependencyChange is one commit's worth of dependency-set delta, as
// produced by VCSCheckout.FindDependencyChanges.
type DependencyChange struct {
	Added, Removed []string
	AgeDays         float64
}

// VCSCheckout abstracts over cloning and mining a monorepo's history.
//
// Grounded on claircore's indexer.Realizer/FetchArena split: a coarse
// "get me a local handle" step, then several narrow query methods against
// that handle, rather than one fat method returning everything at once.
type VCSCheckout interface {
	Checkout(ctx context.Context, url, cacheDir string) (VCSHandle, error)
	FindManifests(ctx context.Context, h VCSHandle) ([]FoundManifest, error)
	FindVersions(ctx context.Context, h VCSHandle) (map[string][]VersionStamp, error)
	// FindDependencyChanges streams one DependencyChange per commit, oldest
	// first, into fn. fn's error stops the walk and is returned verbatim.
	FindDependencyChanges(ctx context.Context, h VCSHandle, fn func(DependencyChange) error) error
}

// VersionStamp is one (version, publish time) pair recovered from tags or
// manifest history.
type VersionStamp struct {
	Version string
	At      time.Time
}

// HostMetadata is repo summary data pulled from a VCS host's API (GitHub,
// GitLab). All fields are best-effort. RepoMetadata reports a failed call as
// an error; the crate page treats it as non-fatal and renders without host
// metadata.
type HostMetadata struct {
	Stars         int
	Subscribers   int
	Homepage      string
	Description   string
	Topics        []string
	Contributors  []string
	Releases      []string
	CommitsAhead  int // commits on default branch since the given version tag
}

// VCSHostMetadata fetches HostMetadata for a repo, and commits-since-version
// counts for a specific published version.
type VCSHostMetadata interface {
	RepoMetadata(ctx context.Context, owner, repo string) (HostMetadata, error)
	CommitsSince(ctx context.Context, owner, repo, versionTag string) (int, error)
}
