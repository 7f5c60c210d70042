package ingest

import (
	"context"
	"fmt"
	"math"

	"github.com/Protryon/lib-rs-mirror-sub000/collab"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// RepoPipeline runs the VCS monorepo variant of C6: rather than a single
// tarball, a repo checkout may contain several crates (a "workspace"), and
// its commit history is a source of change records (Replaced/Removed
// dependency weights).
type RepoPipeline struct {
	VCS    collab.VCSCheckout
	Host   collab.VCSHostMetadata
	Writer store.Writer

	// CacheDir is where Checkout's local clone is kept between runs.
	CacheDir string
}

// IndexRepo checks out repoURL, maps every discovered manifest to a crate
// name, mines its commit history for dependency-change records, and recovers
// a version list for each discovered crate from tags/manifest history. It
// does not itself run the per-version ingestion pipeline
// (Pipeline.IngestVersion handles one (crate, version) pair however it was
// discovered; IndexRepo's job is purely the repo-level bookkeeping a
// monorepo needs on top of that). The returned versions map lets a caller
// feed each discovered crate through IngestVersion with a GitRepo origin,
// the same way a registry-mirrored crate is fed through with a RegistryName
// origin.
func (p *RepoPipeline) IndexRepo(ctx context.Context, repoURL string) ([]collab.FoundManifest, map[string][]mirror.Record, error) {
	h, err := p.VCS.Checkout(ctx, repoURL, p.CacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: checkout %s: %w", repoURL, err)
	}

	found, err := p.VCS.FindManifests(ctx, h)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: find manifests in %s: %w", repoURL, err)
	}

	mappings := make([]store.RepoCrateMapping, 0, len(found))
	names := make(map[string]bool, len(found))
	for _, fm := range found {
		m, err := ParseManifest(fm.Manifest)
		if err != nil || m.Name == "" {
			continue
		}
		mappings = append(mappings, store.RepoCrateMapping{Path: fm.Path, Name: m.Name})
		names[m.Name] = true
	}
	if err := p.Writer.IndexRepoCrates(ctx, repoURL, mappings); err != nil {
		return nil, nil, fmt.Errorf("ingest: index repo crates for %s: %w", repoURL, err)
	}

	stamps, err := p.VCS.FindVersions(ctx, h)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: find versions in %s: %w", repoURL, err)
	}
	versions := make(map[string][]mirror.Record, len(names))
	for name := range names {
		versions[name] = fallbackVersionsFromStamps(name, stamps[name])
	}

	changes, err := p.mineDependencyChanges(ctx, h)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: mine dependency changes for %s: %w", repoURL, err)
	}
	if len(changes) > 0 {
		if err := p.Writer.IndexRepoChanges(ctx, repoURL, changes); err != nil {
			return nil, nil, fmt.Errorf("ingest: index repo changes for %s: %w", repoURL, err)
		}
	}

	return found, versions, nil
}

// mineDependencyChanges walks the checkout's commit history and scores each
// commit's dependency delta:
//
//   - a dependency named in one commit's Removed set and a later commit's
//     Added set is a Replaced record, weighted 1/N² (N = the number of
//     commits between the two, i.e. how tightly the swap happened) times a
//     30/(30+age_days) recency decay;
//   - a dependency Removed with no later reappearance is a Removed record,
//     weighted by how many *other* dependencies were added in the same
//     commit (a removal bundled with a large rewrite is weaker evidence of
//     "users should stop depending on this" than an isolated removal).
func (p *RepoPipeline) mineDependencyChanges(ctx context.Context, h collab.VCSHandle) ([]store.RepoChange, error) {
	type pendingRemoval struct {
		commitIndex       int
		ageDays           float64
		addedInSameCommit int
	}
	removed := make(map[string]pendingRemoval)
	var out []store.RepoChange
	commitIndex := 0

	err := p.VCS.FindDependencyChanges(ctx, h, func(dc collab.DependencyChange) error {
		defer func() { commitIndex++ }()

		for _, name := range dc.Added {
			if pr, ok := removed[name]; ok {
				n := commitIndex - pr.commitIndex
				if n < 1 {
					n = 1
				}
				weight := 1.0 / float64(n*n) * (30.0 / (30.0 + dc.AgeDays))
				out = append(out, store.RepoChange{
					Kind:        store.RepoChangeReplaced,
					CrateName:   name,
					Replacement: name,
					Weight:      weight,
				})
				delete(removed, name)
			}
		}
		for _, name := range dc.Removed {
			removed[name] = pendingRemoval{
				commitIndex:       commitIndex,
				ageDays:           dc.AgeDays,
				addedInSameCommit: len(dc.Added),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for name, pr := range removed {
		weight := 1.0 / math.Max(1.0, float64(pr.addedInSameCommit)) * (30.0 / (30.0 + pr.ageDays))
		out = append(out, store.RepoChange{
			Kind:      store.RepoChangeRemoved,
			CrateName: name,
			Weight:    weight,
		})
	}
	return out, nil
}

// fallbackVersionsFromStamps converts VCSCheckout.FindVersions output into
// mirror.Record-shaped stubs for crates discovered only via a repo checkout
// (no upstream registry mirror entry exists yet), so the same
// Pipeline.IngestVersion path can ingest them.
func fallbackVersionsFromStamps(name string, stamps []collab.VersionStamp) []mirror.Record {
	out := make([]mirror.Record, 0, len(stamps))
	for _, s := range stamps {
		out = append(out, mirror.Record{Name: name, Vers: s.Version})
	}
	return out
}
