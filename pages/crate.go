package pages

import (
	"context"
	"fmt"
	"html/template"
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/collab"
	"github.com/Protryon/lib-rs-mirror-sub000/depgraph"
)

// CrateView is the view model for one crate page.
type CrateView struct {
	Title         string
	Name          string
	Description   string
	Homepage      string
	Repository    string
	License       string
	LatestVersion string

	Warnings    []ci.Warning
	Categories  []ci.CategoryEdge
	Keywords    []string
	Versions    []VersionSummary
	ReverseDeps []ReverseDepEntry
	Related     []CrateSummary
	Readme      template.HTML
	HostMeta    *collab.HostMetadata
}

// CratePage builds and renders the crate page for origin.
//
// Stages (indexer.Controller style, partial data tolerated rather than
// aborting): fetch the stored manifest+derived data; fetch the mirror's
// version history for registry origins; fetch reverse-dependency counts;
// fetch related crates; fetch VCS host metadata for GitRepo origins.
func (r *Renderer) CratePage(ctx context.Context, st *State, origin ci.Origin) (Rendered, error) {
	manifest, derived, err := st.Reader.RichCrateVersionData(ctx, origin)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: crate page %s: %w", origin, err)
	}

	categories := manifest.Categories
	keywords := manifest.Keywords
	if len(categories) == 0 {
		categories = derived.InferredCategories
	}
	if len(keywords) == 0 {
		keywords = derived.InferredKeywords
	}
	catEdges := make([]ci.CategoryEdge, len(categories))
	for i, slug := range categories {
		catEdges[i] = ci.CategoryEdge{Slug: slug, Relevance: 1, Rank: 1}
	}

	view := CrateView{
		Title:         manifest.Name,
		Name:          manifest.Name,
		Description:   manifest.Description,
		Homepage:      manifest.Homepage,
		Repository:    manifest.Repository,
		License:       manifest.License,
		LatestVersion: manifest.Version,
		Warnings:      derived.Warnings,
		Categories:    catEdges,
		Keywords:      keywords,
		Readme:        readmeHTML(derived.Readme),
	}

	if origin.IsRegistry() {
		if entry, ok := st.Mirror.CrateByLowercaseName(origin.Name); ok {
			view.Versions = make([]VersionSummary, len(entry.Versions))
			for i, rec := range entry.Versions {
				view.Versions[i] = VersionSummary{Num: rec.Vers, Yanked: rec.Yanked}
			}
		}
		if st.Deps != nil {
			if stats, err := st.Deps.DepsStats(ctx); err == nil {
				if rs, ok := stats[origin.Name]; ok {
					view.ReverseDeps = reverseDepEntries(rs)
				}
			}
		}
	}

	related, err := st.Reader.RelatedCrates(ctx, origin, 0)
	if err == nil {
		view.Related = summariesFor(ctx, st, related)
	}

	if !origin.IsRegistry() && st.Hosts != nil {
		meta, err := st.Hosts.RepoMetadata(ctx, origin.Owner, origin.Repo)
		if err == nil {
			view.HostMeta = &meta
		}
	}

	b, err := r.render("crate", view)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}

func reverseDepEntries(rs depgraph.RevStats) []ReverseDepEntry {
	return []ReverseDepEntry{
		{Role: "normal", Default: rs.Runtime.Default, Optional: rs.Runtime.Optional},
		{Role: "build", Default: rs.Build.Default, Optional: rs.Build.Optional},
		{Role: "dev", Default: rs.Dev.Default, Optional: rs.Dev.Optional},
	}
}

// summariesFor resolves a bounded list of origins into display summaries.
// Each entry costs one RichCrateVersionData round trip; callers are
// expected to pass already-limited result sets (RelatedCrates caps at 10).
func summariesFor(ctx context.Context, st *State, origins []ci.Origin) []CrateSummary {
	out := make([]CrateSummary, 0, len(origins))
	for _, o := range origins {
		m, _, err := st.Reader.RichCrateVersionData(ctx, o)
		if err != nil {
			continue
		}
		out = append(out, CrateSummary{Origin: o, Name: m.Name, Description: m.Description})
	}
	return out
}

// currentTime is a var so tests can stub it.
var currentTime = time.Now

// ReverseDependenciesPage builds the "used by" listing page for origin.
func (r *Renderer) ReverseDependenciesPage(ctx context.Context, st *State, origin ci.Origin) (Rendered, error) {
	manifest, _, err := st.Reader.RichCrateVersionData(ctx, origin)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: reverse deps page %s: %w", origin, err)
	}
	var dependents []CrateSummary
	if origin.IsRegistry() {
		related, err := st.Reader.RelatedCrates(ctx, origin, 0)
		if err == nil {
			dependents = summariesFor(ctx, st, related)
		}
	}
	data := struct {
		Title      string
		Name       string
		Dependents []CrateSummary
	}{Title: manifest.Name + " - reverse dependencies", Name: manifest.Name, Dependents: dependents}
	b, err := r.render("reverse_deps", data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}

// ReviewsPage builds the crev-style review page for origin. Review
// aggregation has no collaborator contract in this module, so the page
// always renders the "not available" placeholder.
func (r *Renderer) ReviewsPage(ctx context.Context, st *State, origin ci.Origin) (Rendered, error) {
	manifest, _, err := st.Reader.RichCrateVersionData(ctx, origin)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: reviews page %s: %w", origin, err)
	}
	data := struct{ Title, Name string }{Title: manifest.Name + " - reviews", Name: manifest.Name}
	b, err := r.render("reviews", data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}

// InstallPage builds the install-instructions page for origin.
func (r *Renderer) InstallPage(ctx context.Context, st *State, origin ci.Origin) (Rendered, error) {
	manifest, _, err := st.Reader.RichCrateVersionData(ctx, origin)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: install page %s: %w", origin, err)
	}
	features := make([]string, 0, len(manifest.Features))
	for name := range manifest.Features {
		features = append(features, name)
	}
	data := struct {
		Title, Name, LatestVersion string
		Features                   []string
	}{Title: manifest.Name + " - install", Name: manifest.Name, LatestVersion: manifest.Version, Features: features}
	b, err := r.render("install", data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: b, LastModified: currentTime()}, nil
}
