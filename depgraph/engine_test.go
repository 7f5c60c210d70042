package depgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

func TestFlattenedDependenciesSimple(t *testing.T) {
	snap := mirror.NewSnapshot([]*mirror.Entry{
		{Name: "app", Versions: []mirror.Record{{
			Name: "app", Vers: "1.0.0",
			Deps: []mirror.Dep{{Name: "lib", Req: "^1.0", Kind: ci.KindNormal}},
			Features: map[string][]string{"default": {}},
		}}},
		{Name: "lib", Versions: []mirror.Record{
			{Name: "lib", Vers: "1.0.0"},
			{Name: "lib", Vers: "1.2.0"},
		}},
	})
	e := New(snap)
	deps, err := e.FlattenedDependencies(context.Background(), ci.RegistryName("app"), Query{IncludeDefault: true})
	require.NoError(t, err)
	require.Len(t, deps, 1)
	d, ok := deps[DepKey{Name: "lib", Version: "1.2.0"}]
	require.True(t, ok)
	require.Equal(t, "1.2.0", d.Semver)
}

func TestFlattenedDependenciesRejectsGitRepoOrigin(t *testing.T) {
	snap := mirror.NewSnapshot(nil)
	e := New(snap)
	_, err := e.FlattenedDependencies(context.Background(), ci.NewGitRepo(ci.GitHub, "a", "b", "c"), Query{})
	require.Error(t, err)
	var cerr *ci.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ci.ErrInvalid, cerr.Kind)
}

func TestDepsForVersionBreaksCycles(t *testing.T) {
	snap := mirror.NewSnapshot([]*mirror.Entry{
		{Name: "a", Versions: []mirror.Record{{
			Name: "a", Vers: "1.0.0",
			Deps:     []mirror.Dep{{Name: "b", Req: "*", Kind: ci.KindNormal}},
			Features: map[string][]string{"default": {}},
		}}},
		{Name: "b", Versions: []mirror.Record{{
			Name: "b", Vers: "1.0.0",
			Deps:     []mirror.Dep{{Name: "a", Req: "*", Kind: ci.KindNormal}},
			Features: map[string][]string{"default": {}},
		}}},
	})
	e := New(snap)
	deps, err := e.FlattenedDependencies(context.Background(), ci.RegistryName("a"), Query{IncludeDefault: true})
	require.NoError(t, err)
	require.Contains(t, deps, DepKey{Name: "b", Version: "1.0.0"})
}

func TestKeepKindDevOnlyAtTopLevel(t *testing.T) {
	require.True(t, keepKind(ci.KindDev, true, Query{IncludeDev: true}))
	require.False(t, keepKind(ci.KindDev, true, Query{IncludeDev: false}))
	require.False(t, keepKind(ci.KindDev, false, Query{IncludeDev: true}))
	require.True(t, keepKind(ci.KindNormal, false, Query{}))
	require.False(t, keepKind(ci.KindBuild, false, Query{IncludeDefault: false}))
	require.True(t, keepKind(ci.KindBuild, false, Query{IncludeDefault: true}))
}

func TestSelectMatchingVersionFallsBackOnNoMatch(t *testing.T) {
	entry := &mirror.Entry{Name: "lib", Versions: []mirror.Record{
		{Name: "lib", Vers: "0.9.0"},
		{Name: "lib", Vers: "1.0.0"},
	}}
	req := ci.ParseRequirement("^2.0")
	rec, ok := selectMatchingVersion(entry, req)
	require.True(t, ok)
	require.Equal(t, "1.0.0", rec.Vers)
}

func TestSelectMatchingVersionSkipsYanked(t *testing.T) {
	entry := &mirror.Entry{Name: "lib", Versions: []mirror.Record{
		{Name: "lib", Vers: "1.0.0"},
		{Name: "lib", Vers: "1.1.0", Yanked: true},
	}}
	req := ci.ParseRequirement("^1.0")
	rec, ok := selectMatchingVersion(entry, req)
	require.True(t, ok)
	require.Equal(t, "1.0.0", rec.Vers)
}
