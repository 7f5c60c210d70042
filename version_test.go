package crateindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCompare(t *testing.T) {
	a, err := ParseVersion("1.2.3")
	require.NoError(t, err)
	b, err := ParseVersion("1.10.0")
	require.NoError(t, err)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
}

func TestVersionPrerelease(t *testing.T) {
	v, err := ParseVersion("1.0.0-alpha.1")
	require.NoError(t, err)
	assert.True(t, v.Prerelease())
}

func TestVersionUnmarshalCorruptFallsBack(t *testing.T) {
	var v Version
	err := v.UnmarshalText([]byte("not-a-version"))
	require.NoError(t, err)
	assert.False(t, v.Valid())
	assert.Equal(t, "not-a-version", v.String())
}

func TestRequirementMatches(t *testing.T) {
	r := ParseRequirement("^1.2")
	v1, _ := ParseVersion("1.5.0")
	v2, _ := ParseVersion("2.0.0")
	assert.True(t, r.Matches(v1))
	assert.False(t, r.Matches(v2))
}

func TestRequirementMalformedFallsBackToWildcard(t *testing.T) {
	r := ParseRequirement("not a requirement!!")
	v, _ := ParseVersion("9.9.9")
	assert.True(t, r.Matches(v))
	assert.Equal(t, "*", r.String())
}
