package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionWellFormed(t *testing.T) {
	assert.True(t, Action{Mul: 1.0, Add: 5}.wellFormed())
	assert.True(t, Action{Mul: 2.0, Add: 0}.wellFormed())
	assert.True(t, Action{Mul: 0.5, Add: 0}.wellFormed())
	assert.False(t, Action{Mul: 0.5, Add: 1}.wellFormed())
}

func TestRawRuleRejectsAmbiguousCondition(t *testing.T) {
	_, err := rawRule{Any: []string{"a"}, All: []string{"b"}}.toRule()
	assert.Error(t, err)
}

func TestRawRuleRejectsOversizedAll(t *testing.T) {
	_, err := rawRule{All: []string{"a", "b", "c", "d", "e"}}.toRule()
	assert.Error(t, err)
}

func TestRawRuleRejectsMalformedAction(t *testing.T) {
	_, err := rawRule{Any: []string{"a"}, Actions: []Action{{Slug: "x", Mul: 0.5, Add: 1}}}.toRule()
	assert.Error(t, err)
}
