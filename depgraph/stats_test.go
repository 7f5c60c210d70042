package depgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
)

func snapshotForStats() *mirror.Snapshot {
	return mirror.NewSnapshot([]*mirror.Entry{
		{Name: "app1", Versions: []mirror.Record{{
			Name: "app1", Vers: "1.0.0",
			Deps: []mirror.Dep{{Name: "lib", Req: "^1.0", Kind: ci.KindNormal}},
		}}},
		{Name: "app2", Versions: []mirror.Record{{
			Name: "app2", Vers: "1.0.0",
			Deps: []mirror.Dep{{Name: "lib", Req: "^1.0", Kind: ci.KindNormal}},
		}}},
		{Name: "app3", Versions: []mirror.Record{{
			Name: "app3", Vers: "1.0.0",
			Deps: []mirror.Dep{{Name: "lib", Req: "^2.0", Optional: true, Kind: ci.KindDev}},
		}}},
		{Name: "lib", Versions: []mirror.Record{{Name: "lib", Vers: "1.0.0"}}},
	})
}

func TestDepsStatsCountsDirectEdges(t *testing.T) {
	e := New(snapshotForStats())
	stats, err := e.DepsStats(context.Background())
	require.NoError(t, err)
	rs, ok := stats["lib"]
	require.True(t, ok)
	require.Equal(t, 3, rs.Direct)
	require.Equal(t, 2, rs.Runtime.Default)
	require.Equal(t, 1, rs.Dev.Optional)
	require.Equal(t, 2, rs.ReqHistogram["^1.0"])
	require.Equal(t, 1, rs.ReqHistogram["^2.0"])
}

func TestDepsStatsCachesAcrossCalls(t *testing.T) {
	e := New(snapshotForStats())
	first, err := e.DepsStats(context.Background())
	require.NoError(t, err)
	second, err := e.DepsStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.NotNil(t, e.statsResult)
}

func TestVersionPopularityBlendsRatios(t *testing.T) {
	e := New(snapshotForStats())
	ratio, matchesLatest, err := e.VersionPopularity(context.Background(), "lib", "^1.0")
	require.NoError(t, err)
	require.Greater(t, ratio, 0.0)
	require.True(t, matchesLatest)
}

func TestVersionPopularityDeprecatedShortCircuits(t *testing.T) {
	e := New(snapshotForStats())
	ratio, matchesLatest, err := e.VersionPopularity(context.Background(), "rustc-serialize", "^1.0")
	require.NoError(t, err)
	require.Zero(t, ratio)
	require.False(t, matchesLatest)
}

func TestVersionPopularityUnknownCrate(t *testing.T) {
	e := New(snapshotForStats())
	ratio, matchesLatest, err := e.VersionPopularity(context.Background(), "nope", "^1.0")
	require.NoError(t, err)
	require.Zero(t, ratio)
	require.False(t, matchesLatest)
}
