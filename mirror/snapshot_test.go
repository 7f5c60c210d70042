package mirror

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

func testDigest(t *testing.T, fill byte) ci.Digest {
	t.Helper()
	d, err := ci.NewDigest(ci.SHA256, bytes.Repeat([]byte{fill}, sha256.Size))
	require.NoError(t, err)
	return d
}

func writeCrateFile(t *testing.T, dir, name string, lines []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestLoadRejectsSmallMirror(t *testing.T) {
	dir := t.TempDir()
	writeCrateFile(t, dir, "foo", []string{`{"name":"foo","vers":"1.0.0","cksum":"` + strings.Repeat("a", 64) + `"}`})
	_, err := Load(dir)
	require.Error(t, err)
}

func TestHighestVersionSkipsYankedAndPrerelease(t *testing.T) {
	e := &Entry{
		Name: "foo",
		Versions: []Record{
			{Vers: "1.0.0", Cksum: testDigest(t, 0x01)},
			{Vers: "2.0.0", Cksum: testDigest(t, 0x02), Yanked: true},
			{Vers: "1.5.0-beta.1", Cksum: testDigest(t, 0x03)},
		},
	}
	v, ok := HighestVersion(e, true)
	require.True(t, ok)
	require.Equal(t, "1.0.0", v.Vers)

	v, ok = HighestVersion(e, false)
	require.True(t, ok)
	require.Equal(t, "1.5.0-beta.1", v.Vers)
}

func TestCacheKeyChangesWithChecksum(t *testing.T) {
	a := &Entry{Versions: []Record{{Cksum: testDigest(t, 0x01)}}}
	b := &Entry{Versions: []Record{{Cksum: testDigest(t, 0x02)}}}
	require.NotEqual(t, CacheKeyForCrate(a), CacheKeyForCrate(b))

	a2 := &Entry{Versions: []Record{{Cksum: testDigest(t, 0x01)}}}
	require.Equal(t, CacheKeyForCrate(a), CacheKeyForCrate(a2))
}
