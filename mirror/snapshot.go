package mirror

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// minCrateCount is the startup sanity floor: fewer crates
// than this means the mirror directory is truncated or corrupt.
const minCrateCount = 90_000

// Snapshot is an immutable, in-memory view of the upstream mirror directory
// at one point in time. The zero value is not valid; build one with Load.
type Snapshot struct {
	byName map[string]*Entry // keyed by lowercased crate name
}

// Load reads every per-crate file under dir (the upstream mirror's on-disk
// layout: nested two/three-letter prefix directories, one file per crate,
// newline-delimited JSON records) into a new Snapshot.
func Load(dir string) (*Snapshot, error) {
	s := &Snapshot{byName: make(map[string]*Entry)}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return s.loadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("mirror: walk %s: %w", dir, err)
	}

	if len(s.byName) < minCrateCount {
		return nil, &ci.Error{
			Kind:    ci.ErrCorrupt,
			Op:      "mirror.Load",
			Message: fmt.Sprintf("only %d crates loaded, want at least %d: mirror directory looks broken", len(s.byName), minCrateCount),
		}
	}
	return s, nil
}

func (s *Snapshot) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("mirror: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var entry *Entry
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // one bad line doesn't invalidate the whole crate
		}
		key := strings.ToLower(rec.Name)
		if entry == nil {
			entry = &Entry{Name: rec.Name}
		}
		entry.Name = rec.Name
		entry.Versions = append(entry.Versions, rec)
		s.byName[key] = entry
	}
	return sc.Err()
}

// NewSnapshot assembles a Snapshot directly from entries, bypassing Load's
// directory walk and minimum-crate-count sanity check. Exposed for tests and
// for any future caller that already has parsed entries in hand (e.g. an
// incremental updater building a snapshot from a delta rather than a full
// directory).
func NewSnapshot(entries []*Entry) *Snapshot {
	s := &Snapshot{byName: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		s.byName[strings.ToLower(e.Name)] = e
	}
	return s
}

// CrateByLowercaseName returns the entry for name (case-insensitively),
// or (nil, false) if unknown to the mirror.
func (s *Snapshot) CrateByLowercaseName(name string) (*Entry, bool) {
	e, ok := s.byName[strings.ToLower(name)]
	return e, ok
}

// Len returns the number of crates loaded.
func (s *Snapshot) Len() int { return len(s.byName) }

// AllCrates returns every origin the mirror knows about, in no particular
// order.
func (s *Snapshot) AllCrates() []ci.Origin {
	out := make([]ci.Origin, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, ci.RegistryName(name))
	}
	return out
}

// HighestVersion returns e's highest semver version, skipping yanked
// releases and, if stableOnly, pre-releases too.
func HighestVersion(e *Entry, stableOnly bool) (Record, bool) {
	var best Record
	var bestV ci.Version
	found := false
	for _, rec := range e.Versions {
		if rec.Yanked {
			continue
		}
		v, err := ci.ParseVersion(rec.Vers)
		if err != nil {
			continue
		}
		if stableOnly && v.Prerelease() {
			continue
		}
		if !found || v.Compare(bestV) > 0 {
			best, bestV, found = rec, v, true
		}
	}
	return best, found
}

// CacheKeyForCrate hashes every (checksum, yanked) tuple of e's versions
// into a stable uint64: unchanged across restarts, and changes iff any
// version's checksum or yanked state changes. Used to invalidate caches
// derived from this crate's data.
func CacheKeyForCrate(e *Entry) uint64 {
	var b strings.Builder
	for _, rec := range e.Versions {
		fmt.Fprintf(&b, "%s\x00%t\x00", rec.Cksum, rec.Yanked)
	}
	sum := blake3.Sum256([]byte(b.String()))
	return binary.BigEndian.Uint64(sum[:8])
}
