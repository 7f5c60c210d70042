package crateindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginRoundTrip(t *testing.T) {
	tt := []Origin{
		RegistryName("serde"),
		NewGitRepo(GitHub, "tokio-rs", "tokio", "tokio"),
		NewGitRepo(GitLab, "foo", "bar", "baz"),
	}
	for _, o := range tt {
		s := o.String()
		got, err := ParseOrigin(s)
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
}

func TestOriginIsRegistry(t *testing.T) {
	assert.True(t, RegistryName("serde").IsRegistry())
	assert.False(t, NewGitRepo(GitHub, "a", "b", "c").IsRegistry())
}
