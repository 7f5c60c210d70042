package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRouteTimingOverridesAppliesSetFields(t *testing.T) {
	orig := crateTiming
	t.Cleanup(func() { crateTiming = orig })

	path := filepath.Join(t.TempDir(), "timing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crate:\n  cache_time: 1h\n  timeout: 45s\n"), 0o644))

	require.NoError(t, LoadRouteTimingOverrides(path))
	require.Equal(t, time.Hour, crateTiming.cache())
	require.Equal(t, 45*time.Second, crateTiming.deadline())
}

func TestLoadRouteTimingOverridesLeavesUnsetRoutesAlone(t *testing.T) {
	origHome := homeTiming
	t.Cleanup(func() { homeTiming = origHome })

	path := filepath.Join(t.TempDir(), "timing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crate:\n  cache_time: 1h\n"), 0o644))

	require.NoError(t, LoadRouteTimingOverrides(path))
	require.Equal(t, origHome.cache(), homeTiming.cache())
	require.Equal(t, origHome.deadline(), homeTiming.deadline())
}

func TestLoadRouteTimingOverridesErrorsOnMissingFile(t *testing.T) {
	err := LoadRouteTimingOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
