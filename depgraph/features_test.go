package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

func TestEnabledFeaturesDefaultAndImplicitDep(t *testing.T) {
	rec := mirror.Record{
		Features: map[string][]string{
			"default": {"std", "serde"},
			"std":     {},
			"serde":   {"dep:serde_derive"},
		},
	}
	features, enabledDeps := enabledFeatures(rec, Query{IncludeDefault: true})
	require.Contains(t, features, "default")
	require.Contains(t, features, "std")
	require.Contains(t, features, "serde")
	require.Contains(t, enabledDeps, "serde_derive")
}

func TestEnabledFeaturesWeakDepFeature(t *testing.T) {
	rec := mirror.Record{
		Features: map[string][]string{
			"default": {"extra"},
			"extra":   {"tokio/full"},
		},
	}
	_, enabledDeps := enabledFeatures(rec, Query{IncludeDefault: true})
	require.Contains(t, enabledDeps, "tokio")
}

func TestEnabledFeaturesNoDefaultsWhenExcluded(t *testing.T) {
	rec := mirror.Record{
		Features: map[string][]string{
			"default": {"std"},
			"std":     {},
		},
	}
	features, _ := enabledFeatures(rec, Query{IncludeDefault: false})
	require.Empty(t, features)
}

func TestEnabledFeaturesBareNameImplicitOptionalDep(t *testing.T) {
	rec := mirror.Record{
		Features: map[string][]string{
			"default": {"rustls"},
		},
	}
	_, enabledDeps := enabledFeatures(rec, Query{IncludeDefault: true})
	require.Contains(t, enabledDeps, "rustls")
}
