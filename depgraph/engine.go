package depgraph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

// Engine resolves flattened dependency trees against a mirror.Snapshot,
// memoising by (name, version, Query).
//
// Grounded on claircore's internal/cache.Live[K,V] weak-pointer memo
// (internal/cache/live.go): same "store a key once, let later callers share
// the computed value" shape, simplified to a plain map guarded by a
// sync.Mutex since this
// engine's lifetime is one mirror generation (the whole Engine is discarded
// and rebuilt on every mirror reload, per this design's "dependency
// memoisation table" being tied to mirror generations) rather than needing
// per-entry weak-pointer eviction.
type Engine struct {
	snapshot *mirror.Snapshot

	mu   sync.Mutex
	memo map[memoKey]DepSet

	// statsOnce guards the one-shot reverse-dependency roll-up (see
	// stats.go): the first caller of DepsStats pays the cost, every later
	// caller shares statsResult/statsErr.
	statsOnce   sync.Once
	statsResult map[string]RevStats
	statsErr    error
}

type memoKey struct {
	name    string
	version string
	query   Query
}

// New builds an Engine over snap. Construct a fresh Engine on every mirror
// reload; its memo table is meaningless once the snapshot it was built
// against is discarded.
func New(snap *mirror.Snapshot) *Engine {
	return &Engine{snapshot: snap, memo: make(map[memoKey]DepSet)}
}

// FlattenedDependencies implements contract for a crate's
// current latest version. Only registry-name origins are supported; a
// GitRepo origin returns ErrInvalid, since monorepo packages don't appear
// in the upstream mirror's dependency graph (see DESIGN.md's Open Question
// decision for C5).
func (e *Engine) FlattenedDependencies(ctx context.Context, origin ci.Origin, query Query) (DepSet, error) {
	if !origin.IsRegistry() {
		return nil, &ci.Error{Kind: ci.ErrInvalid, Op: "FlattenedDependencies", Message: "dependency flattening is only defined for registry-name origins"}
	}
	entry, ok := e.snapshot.CrateByLowercaseName(origin.Name)
	if !ok {
		return nil, &ci.Error{Kind: ci.ErrNotFound, Op: "FlattenedDependencies", Message: fmt.Sprintf("crate %s not in registry mirror", origin.Name)}
	}
	rec, ok := mirror.HighestVersion(entry, false)
	if !ok {
		return nil, &ci.Error{Kind: ci.ErrNotFound, Op: "FlattenedDependencies", Message: fmt.Sprintf("crate %s has no usable version", origin.Name)}
	}
	return e.depsForVersion(ctx, strings.ToLower(origin.Name), rec.Vers, query, true), nil
}

// depsForVersion resolves one (name, version)'s direct and transitive
// dependencies under query, memoising the result.
//
// A placeholder is installed before recursing so a
// dependency cycle resolves to an empty set on the cyclic edge rather than
// recursing forever; the final computed set overwrites the placeholder once
// available.
func (e *Engine) depsForVersion(ctx context.Context, name, version string, query Query, topLevel bool) DepSet {
	key := memoKey{name: name, version: version, query: query}

	e.mu.Lock()
	if existing, ok := e.memo[key]; ok {
		e.mu.Unlock()
		return existing
	}
	e.memo[key] = DepSet{} // cycle-breaking placeholder
	e.mu.Unlock()

	out := e.resolve(ctx, name, version, query, topLevel)

	e.mu.Lock()
	e.memo[key] = out
	e.mu.Unlock()
	return out
}

func (e *Engine) resolve(ctx context.Context, name, version string, query Query, topLevel bool) DepSet {
	entry, ok := e.snapshot.CrateByLowercaseName(name)
	if !ok {
		return DepSet{}
	}
	var rec mirror.Record
	found := false
	for _, r := range entry.Versions {
		if r.Vers == version {
			rec, found = r, true
			break
		}
	}
	if !found {
		return DepSet{}
	}

	features, enabledDeps := enabledFeatures(rec, query)
	_ = features

	out := make(DepSet)
	for _, dep := range rec.Deps {
		if ctx.Err() != nil {
			return out
		}
		if !keepKind(dep.Kind, topLevel, query) {
			continue
		}
		if dep.Target != "" && !query.IncludeAllOptional {
			continue
		}
		if dep.Optional {
			if !query.IncludeAllOptional {
				if _, ok := enabledDeps[strings.ToLower(dep.Name)]; !ok {
					continue
				}
			}
		}

		req := ci.ParseRequirement(dep.Req)
		depEntry, ok := e.snapshot.CrateByLowercaseName(dep.Name)
		if !ok {
			continue
		}
		chosen, ok := selectMatchingVersion(depEntry, req)
		if !ok {
			continue
		}

		childQuery := query
		if !topLevel {
			childQuery.IncludeDev = false
		}
		sub := e.depsForVersion(ctx, strings.ToLower(dep.Name), chosen.Vers, childQuery, false)

		d := &Dep{Semver: chosen.Vers}
		switch dep.Kind {
		case ci.KindBuild:
			d.Build = sub
		default:
			d.Runtime = sub
		}
		out[DepKey{Name: dep.Name, Version: chosen.Vers}] = d
	}
	return out
}

// keepKind implements this step's kind filter: Normal is always
// kept; Build is kept only when resolving with include_default semantics;
// Dev is kept only at the top level, never transitively.
func keepKind(kind ci.DepKind, topLevel bool, query Query) bool {
	switch kind {
	case ci.KindDev:
		return topLevel && query.IncludeDev
	case ci.KindBuild:
		return query.IncludeDefault
	default:
		return true
	}
}

// selectMatchingVersion picks the highest non-yanked version of entry
// matching req; if none matches, falls back to the most recently published
// non-yanked version. Versions that fail to parse are skipped.
func selectMatchingVersion(entry *mirror.Entry, req ci.Requirement) (mirror.Record, bool) {
	var best mirror.Record
	var bestV ci.Version
	found := false
	for _, rec := range entry.Versions {
		if rec.Yanked {
			continue
		}
		v, err := ci.ParseVersion(rec.Vers)
		if err != nil {
			continue
		}
		if !req.Matches(v) {
			continue
		}
		if !found || v.Compare(bestV) > 0 {
			best, bestV, found = rec, v, true
		}
	}
	if found {
		return best, true
	}
	// Fallback: most recently published non-yanked version, regardless of
	// requirement match (corrupt-upstream tolerance).
	for i := len(entry.Versions) - 1; i >= 0; i-- {
		if !entry.Versions[i].Yanked {
			return entry.Versions[i], true
		}
	}
	return mirror.Record{}, false
}
