package crateindex

import "strings"

// ParseFeatureRef parses one feature descriptor string into a FeatureRef.
// See FeatureRef for the grammar.
func ParseFeatureRef(s string) FeatureRef {
	if dep, feat, ok := strings.Cut(s, "/"); ok {
		weak := strings.HasSuffix(dep, "?")
		dep = strings.TrimSuffix(dep, "?")
		return FeatureRef{Dep: dep, Feature: feat, Weak: weak}
	}
	if dep, ok := strings.CutPrefix(s, "dep:"); ok {
		return FeatureRef{Dep: dep, Implicit: true}
	}
	return FeatureRef{Feature: s}
}
