package cache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"
)

// Entry is one cached rendered page.
type Entry struct {
	Bytes        []byte
	LastModified time.Time
}

// Store is a flat directory of cache files, one per URL slug, each holding
// `html_bytes || u32_le_timestamp`. Writes are whole-file replacements via a
// temp-file-plus-rename, so the filesystem's atomic-rename semantics are the
// only synchronization a reader needs: a concurrent read either sees the old
// file or the new one, never a torn write.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. dir must already exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// pathFor maps a URL slug to an on-disk filename. Slugs are arbitrary route
// paths ("/crates/foo", "/gh/owner/repo/pkg"); slashes are flattened to "_"
// so every cached page lives directly in dir with no nested directories to
// create ahead of time.
func (s *Store) pathFor(slug string) string {
	name := strings.ReplaceAll(strings.Trim(slug, "/"), "/", "_")
	if name == "" {
		name = "_root_"
	}
	return filepath.Join(s.dir, name)
}

// Get reads the cached entry for slug and how long ago the cache file
// itself was written (the freshness clock; distinct from Entry.LastModified,
// which is the underlying page data's own timestamp used for the HTTP
// Last-Modified header). A missing file returns (Entry{}, 0, false, nil).
func (s *Store) Get(slug string) (entry Entry, age time.Duration, ok bool, err error) {
	path := s.pathFor(slug)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, 0, false, nil
		}
		return Entry{}, 0, false, fmt.Errorf("cache: stat %s: %w", slug, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, 0, false, nil
		}
		return Entry{}, 0, false, fmt.Errorf("cache: read %s: %w", slug, err)
	}
	if len(b) < 4 {
		return Entry{}, 0, false, fmt.Errorf("cache: %s: truncated trailer", slug)
	}
	ts := binary.LittleEndian.Uint32(b[len(b)-4:])
	html := b[:len(b)-4]
	var lastModified time.Time
	if ts != 0 {
		lastModified = time.Unix(int64(ts), 0).UTC()
	}
	e := Entry{Bytes: html, LastModified: lastModified}
	return e, time.Since(fi.ModTime()), true, nil
}

// Put writes entry for slug, replacing any existing file atomically.
func (s *Store) Put(slug string, entry Entry) error {
	var ts uint32
	if !entry.LastModified.IsZero() {
		ts = uint32(entry.LastModified.Unix())
	}
	trailer := make([]byte, 4)
	binary.LittleEndian.PutUint32(trailer, ts)

	dst := s.pathFor(slug)
	tmp := dst + "." + uuid.NewString() + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("cache: create temp file for %s: %w", slug, err)
	}
	if _, err := f.Write(entry.Bytes); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache: write %s: %w", slug, err)
	}
	if _, err := f.Write(trailer); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache: write trailer for %s: %w", slug, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: close temp file for %s: %w", slug, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: rename %s: %w", slug, err)
	}
	return nil
}

// Delete removes slug's cache file, if any.
func (s *Store) Delete(slug string) error {
	err := os.Remove(s.pathFor(slug))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: delete %s: %w", slug, err)
	}
	return nil
}

// ETag computes the page's ETag: the hex-encoded 16-byte prefix of a Blake3
// hash of refreshing's tag byte concatenated with the page bytes, so a page
// mid-background-refresh gets a distinct ETag from its settled counterpart.
func ETag(refreshing bool, pageBytes []byte) string {
	h := blake3.New(32, nil)
	if refreshing {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write(pageBytes)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
