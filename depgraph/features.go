package depgraph

import (
	"strings"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

// enabledFeatures expands rec's feature table starting from query's
// defaults, following this step. The returned set contains local
// feature names (from rec.Features) reachable from the roots; dependency
// names referenced via "dep:x" or "x/y" are reported separately via the
// returned enabledDeps set, since a dependency can be enabled without being
// a feature itself.
func enabledFeatures(rec mirror.Record, query Query) (features map[string]struct{}, enabledDeps map[string]struct{}) {
	features = make(map[string]struct{})
	enabledDeps = make(map[string]struct{})

	var roots []string
	if query.IncludeDefault {
		roots = append(roots, "default")
	}
	for _, name := range roots {
		expandFeature(name, rec.Features, features, enabledDeps, 0)
	}
	return features, enabledDeps
}

// maxFeatureDepth guards against a malformed manifest declaring a feature
// cycle; real manifests never nest this deep.
const maxFeatureDepth = 64

func expandFeature(name string, table map[string][]string, features, enabledDeps map[string]struct{}, depth int) {
	if depth > maxFeatureDepth {
		return
	}
	lname := strings.ToLower(name)
	if _, seen := features[lname]; seen {
		return
	}
	descriptors, ok := table[name]
	if !ok {
		// Not a local feature; treat the bare name as implicitly enabling an
		// optional dependency of the same name (cargo's "implicit feature"
		// rule), case-insensitively per this step.
		enabledDeps[lname] = struct{}{}
		return
	}
	features[lname] = struct{}{}
	for _, d := range descriptors {
		ref := ci.ParseFeatureRef(d)
		switch {
		case ref.Dep != "" && ref.Implicit:
			enabledDeps[strings.ToLower(ref.Dep)] = struct{}{}
		case ref.Dep != "":
			enabledDeps[strings.ToLower(ref.Dep)] = struct{}{}
			expandFeature(ref.Feature, table, features, enabledDeps, depth+1)
		default:
			expandFeature(ref.Feature, table, features, enabledDeps, depth+1)
		}
	}
}
