package replio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oreo-lang/oreoc/internal/util"
)

func Test_updateDepth_opensOnBlockKeywords(t *testing.T) {
	var depth util.Stack[string]

	updateDepth(&depth, "IF x < y THEN")
	assert.Equal(t, 1, depth.Len())

	updateDepth(&depth, "WHILE z THEN")
	assert.Equal(t, 2, depth.Len())
}

func Test_updateDepth_closesOnEnd(t *testing.T) {
	var depth util.Stack[string]
	updateDepth(&depth, "IF x < y THEN")
	updateDepth(&depth, "END")

	assert.True(t, depth.Empty())
}

func Test_updateDepth_ignoresEndWithNothingOpen(t *testing.T) {
	var depth util.Stack[string]
	updateDepth(&depth, "END")

	assert.True(t, depth.Empty())
}

func Test_updateDepth_nestedIfWhileClosesInOrder(t *testing.T) {
	var depth util.Stack[string]
	updateDepth(&depth, "IF a THEN")
	updateDepth(&depth, "WHILE b DO")
	updateDepth(&depth, "END")
	assert.Equal(t, 1, depth.Len())
	updateDepth(&depth, "END")
	assert.True(t, depth.Empty())
}
