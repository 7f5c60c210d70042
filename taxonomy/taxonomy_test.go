package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tr, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, tr.Root())
}

func TestFromSlug(t *testing.T) {
	tr, err := Load()
	require.NoError(t, err)

	tt := []struct {
		name  string
		slug  string
		valid bool
		depth int
	}{
		{name: "root", slug: "science", valid: true, depth: 1},
		{name: "nested", slug: "science::math", valid: true, depth: 2},
		{name: "unknown root", slug: "invalid", valid: false, depth: 0},
		{name: "unknown child", slug: "science::physics", valid: false, depth: 1},
		{name: "empty", slug: "", valid: false, depth: 0},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			path, valid := tr.FromSlug(tc.slug)
			assert.Equal(t, tc.valid, valid)
			assert.Len(t, path, tc.depth)
		})
	}
}

func TestValid(t *testing.T) {
	tr, err := Load()
	require.NoError(t, err)
	assert.True(t, tr.Valid("science::math"))
	assert.False(t, tr.Valid("not-a-real-slug"))
}

func TestWalkVisitsEveryNode(t *testing.T) {
	tr, err := Load()
	require.NoError(t, err)
	seen := 0
	tr.Walk(func(n *Node) { seen++ })
	assert.Greater(t, seen, 20)
}
