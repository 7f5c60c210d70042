package depgraph

import (
	"context"
	"strings"
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

// Counts splits a dependency-edge tally by whether the edge was declared
// optional.
type Counts struct {
	Default  int
	Optional int
}

// RevStats is the reverse-dependency roll-up for one crate.
type RevStats struct {
	Runtime Counts
	Build   Counts
	Dev     Counts
	Direct  int

	// ReqHistogram counts, across every dependent, how many declared each
	// exact requirement string. Feeds VersionPopularity.
	ReqHistogram map[string]int
}

// statsTimeout bounds the one-shot roll-up computation.
const statsTimeout = 60 * time.Second

// DepsStats computes (or returns the cached) reverse-dependency roll-up
// across every crate in the mirror, keyed by lowercased crate name.
//
// The computation runs once per Engine (i.e. once per mirror generation)
// behind a double-checked cell: the first caller pays the cost, every
// later caller — concurrent or subsequent — shares the same result,
// matching this design's "dependency-stats cache is a one-shot cell"
// ordering guarantee.
func (e *Engine) DepsStats(ctx context.Context) (map[string]RevStats, error) {
	e.statsOnce.Do(func() {
		cctx, cancel := context.WithTimeout(ctx, statsTimeout)
		defer cancel()
		e.statsResult, e.statsErr = e.computeDepsStats(cctx)
	})
	return e.statsResult, e.statsErr
}

func (e *Engine) computeDepsStats(ctx context.Context) (map[string]RevStats, error) {
	out := make(map[string]RevStats)

	for _, origin := range e.snapshot.AllCrates() {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		entry, ok := e.snapshot.CrateByLowercaseName(origin.Name)
		if !ok {
			continue
		}
		rec, ok := mirror.HighestVersion(entry, false)
		if !ok {
			continue
		}
		for _, dep := range rec.Deps {
			lname := strings.ToLower(dep.Name)
			rs, ok := out[lname]
			if !ok {
				rs.ReqHistogram = make(map[string]int)
			}
			rs.Direct++
			rs.ReqHistogram[dep.Req]++
			switch dep.Kind {
			case ci.KindBuild:
				bump(&rs.Build, dep.Optional)
			case ci.KindDev:
				bump(&rs.Dev, dep.Optional)
			default:
				bump(&rs.Runtime, dep.Optional)
			}
			out[lname] = rs
		}
	}
	return out, nil
}

func bump(c *Counts, optional bool) {
	if optional {
		c.Optional++
	} else {
		c.Default++
	}
}

// deprecatedCrates short-circuits VersionPopularity to (0, false) for
// crates known to be abandoned in favour of a replacement, regardless of
// what their historical requirement histogram says.
var deprecatedCrates = map[string]struct{}{
	"rustc-serialize": {},
	"time@0.1":        {},
}

// VersionPopularity implements version-popularity query: how
// well-supported is requirement among crateName's dependents, blended
// against the most popular single requirement to dampen fragmentation
// noise, plus whether requirement matches crateName's current latest
// stable version.
func (e *Engine) VersionPopularity(ctx context.Context, crateName, requirement string) (blendedRatio float64, matchesLatestStable bool, err error) {
	if _, deprecated := deprecatedCrates[strings.ToLower(crateName)]; deprecated {
		return 0, false, nil
	}

	stats, err := e.DepsStats(ctx)
	if err != nil {
		return 0, false, err
	}
	rs, ok := stats[strings.ToLower(crateName)]
	if !ok || len(rs.ReqHistogram) == 0 {
		return 0, false, nil
	}

	req := ci.ParseRequirement(requirement)
	var matching, total, maxCount int
	for reqStr, count := range rs.ReqHistogram {
		total += count
		if count > maxCount {
			maxCount = count
		}
		candidateReq := ci.ParseRequirement(reqStr)
		if requirementsOverlap(req, candidateReq) {
			matching += count
		}
	}
	if total == 0 {
		return 0, false, nil
	}
	realRatio := float64(matching) / float64(total)
	ratioOfMax := 0.0
	if maxCount > 0 {
		ratioOfMax = float64(matching) / float64(maxCount)
		if ratioOfMax > 1 {
			ratioOfMax = 1
		}
	}
	blendedRatio = (realRatio + ratioOfMax) / 2

	entry, ok := e.snapshot.CrateByLowercaseName(crateName)
	if ok {
		if latest, ok := mirror.HighestVersion(entry, true); ok {
			if v, err := ci.ParseVersion(latest.Vers); err == nil {
				matchesLatestStable = req.Matches(v)
			}
		}
	}
	return blendedRatio, matchesLatestStable, nil
}

// requirementsOverlap approximates "the historical requirement is
// compatible with the requirement being queried" by checking whether a
// synthetic version built from the candidate requirement's string (operator
// prefix stripped) also satisfies req; a candidate string that doesn't parse
// as a version falls back to string equality with req. Exact
// semver-constraint-intersection is out of scope; this is the same
// approximation this design's "matches requirement vs doesn't" split implies
// for a purely string-historied requirement set.
func requirementsOverlap(req, candidate ci.Requirement) bool {
	v, err := ci.ParseVersion(strings.TrimLeft(candidate.String(), "^~=<>* "))
	if err != nil {
		return req.String() == candidate.String()
	}
	return req.Matches(v)
}
