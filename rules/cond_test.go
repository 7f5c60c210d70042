package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnyStrength(t *testing.T) {
	c := Any{Tags: []string{"a", "b", "c"}}
	assert.Equal(t, 0.0, c.strength(kwset()))
	assert.Equal(t, 1.0, c.strength(kwset("a")))
	assert.InDelta(t, math.Sqrt(2), c.strength(kwset("a", "b")), 1e-9)
}

func TestAllStrength(t *testing.T) {
	c := All{Tags: []string{"a", "b"}}
	assert.Equal(t, 0.0, c.strength(kwset("a")))
	assert.Equal(t, 1.0, c.strength(kwset("a", "b")))
}

func TestNotAnyStrength(t *testing.T) {
	c := NotAny{Tags: []string{"a", "b"}}
	assert.Equal(t, 1.0, c.strength(kwset("c")))
	assert.Equal(t, 0.0, c.strength(kwset("a")))
}
