package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quay/zlog"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/collab"
	"github.com/Protryon/lib-rs-mirror-sub000/depgraph"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/rules"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// Pipeline wires the external collaborators, the inference engine, and the
// relational store's write side into the per-version ingestion sequence.
//
// Grounded on libindex.Controller's "fixed set of named stages, constructed
// once, run per-input" shape (internal/indexer/controller.go): Pipeline
// plays the role of that Controller, and IngestVersion plays the role of
// its Index method.
type Pipeline struct {
	Tarballs      collab.TarballFetcher
	Readmes       collab.ReadmeFetcher
	Writer        store.Writer
	CategorySeeds CategorySeedSource
	Rules         *rules.Engine
	Taxonomy      *taxonomy.Tree
	Deps          *depgraph.Engine
}

// VersionMeta carries the per-version signals an ingestion run needs beyond
// the mirror's own Record: author metadata, externally-mined keyword
// synonyms/auto-extraction, and ranking inputs the mirror doesn't track.
type VersionMeta struct {
	Authors         []Author
	Synonyms        []Synonym
	AutoKeywords    []AutoKeyword
	Ranking         float64
	RecentDownloads int64
}

// IngestVersion resolves a tarball and readme, scores keywords and
// categories, and persists the result for one crate's latest version.
func (p *Pipeline) IngestVersion(ctx context.Context, origin ci.Origin, rec mirror.Record, meta VersionMeta) error {
	ctx = zlog.ContextWithValues(ctx, "component", "ingest", "crate", rec.Name, "version", rec.Vers)

	var warnings []ci.Warning
	warn := func(kind, msg string) {
		warnings = append(warnings, ci.Warning{Kind: kind, Message: msg, At: currentTime()})
	}

	tc, manifest, err := p.resolveTarball(ctx, rec, warn)
	if err != nil {
		return fmt.Errorf("ingest: resolve tarball for %s@%s: %w", rec.Name, rec.Vers, err)
	}

	readme := p.resolveReadme(ctx, rec, tc, warn)

	repoURL := canonicalRepoURL(manifest.Repository)
	if manifest.Repository != "" && repoURL == "" {
		warn(ci.WarnMissingRepo, "repository URL present but did not canonicalise")
	}

	depStats, statsErr := p.Deps.DepsStats(ctx)
	if statsErr != nil {
		zlog.Warn(ctx).Err(statsErr).Msg("reverse-dependency stats unavailable, scoring without them")
		depStats = nil
	}

	ki := BuildKeywordInsert(KeywordInputs{
		Manifest:         manifest,
		CanonicalRepoURL: repoURL,
		Authors:          meta.Authors,
		AutoKeywords:     meta.AutoKeywords,
		Synonyms:         meta.Synonyms,
		DepStatsWeight:   depStatsWeightFunc(depStats),
		OwnReverseRole:   ownReverseRoleFunc(depStats, rec.Name),
	})

	categories, demoted, err := ComputeCategories(ctx, p.Rules, p.Taxonomy, p.CategorySeeds, manifest, ki.Keywords())
	if err != nil {
		return fmt.Errorf("ingest: compute categories for %s: %w", rec.Name, err)
	}
	for _, slug := range demoted {
		if kw, ok := ci.Kebab(strings.ReplaceAll(slug, "::", " ")); ok {
			ki.Add(kw, 1.0, true)
		}
		warn(ci.WarnInvalidCategory, "declared category "+slug+" is not a taxonomy slug")
	}

	if rec.Yanked {
		ki.Scale(0.1)
	}

	data := store.CrateVersionData{
		Origin:           origin,
		Name:             displayName(rec.Name),
		Manifest:         manifest,
		Readme:           readme,
		Languages:        tc.Languages,
		CompressedSize:   tc.CompressedSize,
		DecompressedSize: tc.DecompressedSize,
		LibraryPath:      tc.LibraryPath,
		HasBuildScript:   tc.HasBuildScript || manifest.HasBuildScript,
		HasCodeOfConduct: tc.HasCodeOfConduct,
		RequiresNightly:  manifest.RequiresNightly,
		Yanked:           rec.Yanked,
		Keywords:         ki.Set(),
		Categories:       categories,
		RepoURL:          repoURL,
		Warnings:         warnings,
	}
	if err := p.Writer.IndexLatest(ctx, data); err != nil {
		return fmt.Errorf("ingest: index %s@%s: %w", rec.Name, rec.Vers, err)
	}
	return nil
}

func (p *Pipeline) resolveTarball(ctx context.Context, rec mirror.Record, warn func(kind, msg string)) (*TarballContents, ci.Manifest, error) {
	rc, err := p.Tarballs.FetchTarball(ctx, rec.Name, rec.Vers)
	if err != nil {
		return nil, ci.Manifest{}, fmt.Errorf("fetch tarball: %w", err)
	}
	defer rc.Close()

	tc, err := ExtractTarball(rc)
	if err != nil {
		warn(ci.WarnCorruptTarball, err.Error())
		return &TarballContents{Languages: ci.LanguageLines{}}, fallbackManifest(rec), nil
	}

	if len(tc.Manifest) == 0 {
		warn(ci.WarnCorruptTarball, "tarball contained no Cargo.toml")
		return tc, fallbackManifest(rec), nil
	}
	manifest, err := ParseManifest(tc.Manifest)
	if err != nil {
		warn(ci.WarnCorruptTarball, err.Error())
		return tc, fallbackManifest(rec), nil
	}
	return tc, manifest, nil
}

func (p *Pipeline) resolveReadme(ctx context.Context, rec mirror.Record, tc *TarballContents, warn func(kind, msg string)) *ci.README {
	if len(tc.Readme) > 0 {
		return &ci.README{Markup: readmeMarkup(tc.ReadmeName), Text: string(tc.Readme)}
	}
	if p.Readmes != nil {
		if html, ok, err := p.Readmes.FetchReadme(ctx, rec.Name, rec.Vers); err == nil && ok {
			return &ci.README{Markup: "html", Text: html}
		}
	}
	warn(ci.WarnMissingReadme, "no readme found in tarball or via collaborator")
	return nil
}

func readmeMarkup(name string) string {
	switch {
	case strings.HasSuffix(name, ".rst"):
		return "rst"
	case strings.HasSuffix(name, ".txt"):
		return "text"
	default:
		return "markdown"
	}
}

func fallbackManifest(rec mirror.Record) ci.Manifest {
	m := ci.Manifest{Name: rec.Name, Version: rec.Vers}
	m.Runtime = make([]ci.Dependency, 0, len(rec.Deps))
	for _, d := range rec.Deps {
		if d.Kind != ci.KindNormal {
			continue
		}
		m.Runtime = append(m.Runtime, ci.Dependency{Name: d.Name, Req: d.Req, Kind: d.Kind, Optional: d.Optional})
	}
	return m
}

func displayName(lower string) string {
	if lower == "" {
		return lower
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// canonicalRepoURL normalises a repository URL for clustering monorepo
// crates: lowercase scheme+host, strip a trailing slash and ".git" suffix.
func canonicalRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	if i := strings.Index(s, "://"); i > 0 {
		return strings.ToLower(s[:i]) + s[i:]
	}
	return s
}

// depStatsWeightFunc derives the "dep_stats_weight" signal from the
// reverse-dependency roll-up: a [0,1] popularity score computed from how
// many crates depend on depName directly, log-scaled so the difference
// between 10 and 10,000 dependents is visible without one outlier (serde,
// libc, ...) saturating every weight to 1. Exact normalisation isn't
// specified; this is this implementation's concrete choice.
func depStatsWeightFunc(stats map[string]depgraph.RevStats) func(string) float64 {
	return func(name string) float64 {
		if stats == nil {
			return 0
		}
		rs, ok := stats[strings.ToLower(name)]
		if !ok || rs.Direct == 0 {
			return 0
		}
		w := math.Log10(float64(rs.Direct)+1) / 4
		if w > 1 {
			w = 1
		}
		return w
	}
}

// ownReverseRoleFunc implements the has:is_build/has:is_dev pseudo-tags:
// true when most of this crate's own dependents pull it in via that role
// rather than as a normal runtime dependency.
func ownReverseRoleFunc(stats map[string]depgraph.RevStats, name string) func() (bool, bool) {
	return func() (isBuild, isDev bool) {
		if stats == nil {
			return false, false
		}
		rs, ok := stats[strings.ToLower(name)]
		if !ok {
			return false, false
		}
		runtimeTotal := rs.Runtime.Default + rs.Runtime.Optional
		buildTotal := rs.Build.Default + rs.Build.Optional
		devTotal := rs.Dev.Default + rs.Dev.Optional
		isBuild = buildTotal > 0 && buildTotal >= runtimeTotal
		isDev = devTotal > 0 && devTotal >= runtimeTotal
		return isBuild, isDev
	}
}

// currentTime is a seam so tests can pin Warning timestamps; IngestVersion
// itself only needs "now" once per warning.
var currentTime = time.Now
