package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

func TestParseManifestBareAndDetailedDependencies(t *testing.T) {
	raw := []byte(`
[package]
name = "widget"
version = "1.2.3"
description = "a widget"
repository = "https://github.com/example/widget"
keywords = ["widget", "gadget"]
categories = ["science"]
links = "libwidget"

[lib]
proc-macro = false

[dependencies]
serde = "1.0"

[dependencies.tokio]
version = "1.0"
optional = true
default-features = false
features = ["rt"]

[build-dependencies]
cc = "1.0"

[dev-dependencies]
criterion = "0.5"

[features]
default = ["tokio"]
extra = []
`)
	m, err := ParseManifest(raw)
	require.NoError(t, err)
	require.Equal(t, "widget", m.Name)
	require.Equal(t, "1.2.3", m.Version)
	require.ElementsMatch(t, []string{"widget", "gadget"}, m.Keywords)
	require.True(t, m.HasBuildScript == false)
	require.Len(t, m.Runtime, 2)
	require.Len(t, m.Build, 1)
	require.Len(t, m.Dev, 1)

	var tokio ci.Dependency
	for _, d := range m.Runtime {
		if d.Name == "tokio" {
			tokio = d
		}
	}
	require.Equal(t, "tokio", tokio.Name)
	require.True(t, tokio.Optional)
	require.False(t, tokio.DefaultFeatures)
	require.Equal(t, []string{"rt"}, tokio.Features)

	require.Contains(t, m.Features, "default")
	require.Contains(t, m.Features, "extra")
}

func TestParseManifestDetectsBuildScript(t *testing.T) {
	raw := []byte(`
[package]
name = "sys-crate"
version = "0.1.0"
build = "build.rs"
`)
	m, err := ParseManifest(raw)
	require.NoError(t, err)
	require.True(t, m.HasBuildScript)
}

func TestParseManifestRejectsInvalidTOML(t *testing.T) {
	_, err := ParseManifest([]byte("this is not [ valid toml"))
	require.Error(t, err)
	var ierr *ci.Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, ci.ErrCorrupt, ierr.Kind)
}

func TestHasSrcBinDetectsMainRsAndBinSection(t *testing.T) {
	require.True(t, hasSrcBin([]byte("src/main.rs")))
	require.True(t, hasSrcBin([]byte("[[bin]]\nname = \"x\"")))
	require.False(t, hasSrcBin([]byte("[package]\nname = \"x\"")))
}

func TestRequiresNightlyPatternMatchesFeatureGates(t *testing.T) {
	require.True(t, requiresNightlyPattern.Match([]byte("cargo-features = [\"edition2021\"]")))
	require.True(t, requiresNightlyPattern.Match([]byte("#![feature(bench)]")))
	require.False(t, requiresNightlyPattern.Match([]byte("[package]\nname=\"x\"")))
}
