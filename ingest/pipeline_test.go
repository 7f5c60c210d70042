package ingest

import (
	"archive/tar"
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/collab/collabtest"
	"github.com/Protryon/lib-rs-mirror-sub000/depgraph"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/rules"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// recordingWriter is a store.Writer fake that captures the single
// IndexLatest call a test cares about.
type recordingWriter struct {
	data store.CrateVersionData
	err  error
}

func (w *recordingWriter) IndexLatest(_ context.Context, data store.CrateVersionData) error {
	w.data = data
	return w.err
}
func (w *recordingWriter) IndexVersions(context.Context, ci.Origin, []ci.CrateVersion, float64, int64) error {
	return nil
}
func (w *recordingWriter) IndexRepoCrates(context.Context, string, []store.RepoCrateMapping) error {
	return nil
}
func (w *recordingWriter) IndexRepoChanges(context.Context, string, []store.RepoChange) error {
	return nil
}
func (w *recordingWriter) IndexCrateOwners(context.Context, ci.Origin, []store.CrateOwner) error {
	return nil
}

var _ store.Writer = (*recordingWriter)(nil)

func gzipTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: "widget-1.0.0/" + name, Size: int64(len(content)), Mode: 0o644}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, w store.Writer, tarballs map[string][]byte, readmes map[string]string) *Pipeline {
	t.Helper()
	tree, err := taxonomy.Load()
	require.NoError(t, err)
	engine, err := rules.Load(tree)
	require.NoError(t, err)
	snap := mirror.NewSnapshot(nil)
	return &Pipeline{
		Tarballs: &collabtest.Tarballs{Data: tarballs},
		Readmes:  &collabtest.Readmes{Data: readmes},
		Writer:   w,
		Rules:    engine,
		Taxonomy: tree,
		Deps:     depgraph.New(snap),
	}
}

func TestIngestVersionHappyPath(t *testing.T) {
	tarball := gzipTarball(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"widget\"\nversion = \"1.0.0\"\nkeywords = [\"widget\"]\n",
		"README.md":  "# Widget\n",
	})
	w := &recordingWriter{}
	p := newTestPipeline(t, w, map[string][]byte{"widget@1.0.0": tarball}, nil)

	rec := mirror.Record{Name: "widget", Vers: "1.0.0"}
	err := p.IngestVersion(context.Background(), ci.RegistryName("widget"), rec, VersionMeta{})
	require.NoError(t, err)
	require.Equal(t, "Widget", w.data.Name)
	require.NotNil(t, w.data.Readme)
	require.Equal(t, "# Widget\n", w.data.Readme.Text)
	require.False(t, w.data.Yanked)
	require.Empty(t, w.data.Warnings)
}

func TestIngestVersionFallsBackToReadmeCollaborator(t *testing.T) {
	tarball := gzipTarball(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"widget\"\nversion = \"1.0.0\"\n",
	})
	w := &recordingWriter{}
	p := newTestPipeline(t, w, map[string][]byte{"widget@1.0.0": tarball}, map[string]string{"widget@1.0.0": "<p>hi</p>"})

	rec := mirror.Record{Name: "widget", Vers: "1.0.0"}
	err := p.IngestVersion(context.Background(), ci.RegistryName("widget"), rec, VersionMeta{})
	require.NoError(t, err)
	require.NotNil(t, w.data.Readme)
	require.Equal(t, "<p>hi</p>", w.data.Readme.Text)
	require.Equal(t, "html", w.data.Readme.Markup)
}

func TestIngestVersionRecordsWarningOnCorruptTarball(t *testing.T) {
	w := &recordingWriter{}
	p := newTestPipeline(t, w, map[string][]byte{"widget@1.0.0": []byte("not a gzip stream")}, nil)

	rec := mirror.Record{
		Name: "widget",
		Vers: "1.0.0",
		Deps: []mirror.Dep{{Name: "serde", Kind: ci.KindNormal}},
	}
	err := p.IngestVersion(context.Background(), ci.RegistryName("widget"), rec, VersionMeta{})
	require.NoError(t, err)
	require.NotEmpty(t, w.data.Warnings)
	require.Equal(t, ci.WarnCorruptTarball, w.data.Warnings[0].Kind)
	require.Len(t, w.data.Manifest.Runtime, 1)
	require.Equal(t, "serde", w.data.Manifest.Runtime[0].Name)
}

func TestIngestVersionAppliesYankedMultiplier(t *testing.T) {
	tarball := gzipTarball(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"widget\"\nversion = \"1.0.0\"\nkeywords = [\"widget\"]\n",
	})
	w := &recordingWriter{}
	p := newTestPipeline(t, w, map[string][]byte{"widget@1.0.0": tarball}, nil)

	rec := mirror.Record{Name: "widget", Vers: "1.0.0", Yanked: true}
	err := p.IngestVersion(context.Background(), ci.RegistryName("widget"), rec, VersionMeta{})
	require.NoError(t, err)
	require.True(t, w.data.Yanked)
	for _, kw := range w.data.Keywords {
		require.Less(t, kw.Weight, 10.0)
	}
}

func TestCanonicalRepoURLStripsGitSuffixAndTrailingSlash(t *testing.T) {
	require.Equal(t, "https://github.com/a/b", canonicalRepoURL("https://github.com/a/b.git/"))
	require.Equal(t, "", canonicalRepoURL(""))
}
