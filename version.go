package crateindex

import (
	"database/sql/driver"
	"fmt"

	"github.com/Masterminds/semver"
)

// Version wraps a semver.Version so it can be persisted and compared
// uniformly across the mirror (C4) and dependency engine (C5), matching
// claircore's pattern of a serialisable domain type over a third-party
// value ([Digest] does the same for content hashes).
type Version struct {
	raw string
	sem *semver.Version
}

// ParseVersion parses s as semver. On failure, the caller should treat the
// version as unparseable and skip the candidate rather than propagate the
// error upward.
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("crateindex: parse version %q: %w", s, err)
	}
	return Version{raw: s, sem: sv}, nil
}

// String returns the original version string.
func (v Version) String() string {
	if v.sem == nil {
		return v.raw
	}
	return v.raw
}

// Prerelease reports whether this is a pre-release version.
func (v Version) Prerelease() bool {
	return v.sem != nil && v.sem.Prerelease() != ""
}

// Compare returns -1, 0, or 1 comparing v to o, semver-aware.
func (v Version) Compare(o Version) int {
	if v.sem == nil || o.sem == nil {
		if v.raw == o.raw {
			return 0
		}
		if v.raw < o.raw {
			return -1
		}
		return 1
	}
	return v.sem.Compare(o.sem)
}

// Valid reports whether v was constructed from a successfully parsed string.
func (v Version) Valid() bool {
	return v.sem != nil
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := ParseVersion(string(b))
	if err != nil {
		// Corrupt upstream data: keep the closest approximation (the raw
		// string) persisted, but mark it unparsed rather than erroring.
		v.raw = string(b)
		v.sem = nil
		return nil
	}
	*v = parsed
	return nil
}

// Scan implements sql.Scanner.
func (v *Version) Scan(i any) error {
	switch x := i.(type) {
	case nil:
		return nil
	case string:
		return v.UnmarshalText([]byte(x))
	case []byte:
		return v.UnmarshalText(x)
	default:
		return fmt.Errorf("crateindex: invalid version scan type %T", x)
	}
}

// Value implements driver.Valuer.
func (v Version) Value() (driver.Value, error) {
	return v.raw, nil
}

// Requirement wraps a semver.Constraints for matching against candidate
// versions (used by the dependency engine, C5).
type Requirement struct {
	raw string
	c   *semver.Constraints
}

// ParseRequirement parses a version-requirement string. A malformed
// requirement yields the wildcard "*" constraint; the caller is expected
// to have logged the substitution.
func ParseRequirement(s string) Requirement {
	if s == "" {
		s = "*"
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		c, _ = semver.NewConstraint("*")
		return Requirement{raw: "*", c: c}
	}
	return Requirement{raw: s, c: c}
}

// Matches reports whether v satisfies the requirement.
func (r Requirement) Matches(v Version) bool {
	if r.c == nil || v.sem == nil {
		return false
	}
	return r.c.Check(v.sem)
}

// String returns the original requirement string.
func (r Requirement) String() string { return r.raw }
