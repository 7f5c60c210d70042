package ingest

import (
	"archive/tar"
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		hdr := &tar.Header{Name: "crate-1.0.0/" + name, Size: int64(len(content)), Mode: 0o644}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return gzBuf.Bytes()
}

func TestExtractTarballRecoversManifestReadmeAndLanguages(t *testing.T) {
	raw := buildTarball(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"crate\"\n",
		"README.md":   "# crate\n",
		"src/lib.rs":  "fn lib() {}\nfn other() {}\n",
		"build.rs":    "fn main() {}\n",
		"CODE_OF_CONDUCT.md": "be nice\n",
	})
	tc, err := ExtractTarball(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "[package]\nname = \"crate\"\n", string(tc.Manifest))
	require.Equal(t, "# crate\n", string(tc.Readme))
	require.Equal(t, "README.md", tc.ReadmeName)
	require.Equal(t, "src/lib.rs", tc.LibraryPath)
	require.True(t, tc.HasBuildScript)
	require.True(t, tc.HasCodeOfConduct)
	require.Equal(t, 3, tc.Languages["Rust"]) // src/lib.rs (2 lines) + build.rs (1 line)
	require.Greater(t, tc.CompressedSize, int64(0))
	require.Greater(t, tc.DecompressedSize, int64(0))
}

func TestExtractTarballRejectsNonGzipStream(t *testing.T) {
	_, err := ExtractTarball(strings.NewReader("not a gzip stream at all"))
	require.Error(t, err)
	var ierr *ci.Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, ci.ErrCorrupt, ierr.Kind)
}

func TestExtractTarballRejectsTruncatedGzip(t *testing.T) {
	raw := buildTarball(t, map[string]string{"Cargo.toml": "[package]\n"})
	_, err := ExtractTarball(bytes.NewReader(raw[:len(raw)-20]))
	require.Error(t, err)
}
