package oreoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
)

func mustUnit(t *testing.T) *Unit {
	t.Helper()
	table, err := grammar.Default()
	require.NoError(t, err)
	return New(table)
}

func Test_Compile_simpleAssignmentAndPrint(t *testing.T) {
	u := mustUnit(t)

	result, err := u.Compile(`program Test begin var x := 5; print x; end`)

	require.NoError(t, err)
	require.NotNil(t, result.Program)
	assert.Contains(t, result.Program.String(), "v_x = 5;")
}

func Test_Compile_whileLoop_emitsLabelsAndBackGoto(t *testing.T) {
	u := mustUnit(t)

	result, err := u.Compile(`program Test begin var x := 0; while x < 10 do x := x + 1; end end`)

	require.NoError(t, err)
	out := result.Program.String()
	assert.True(t, strings.Contains(out, "while_start:"))
	assert.True(t, strings.Contains(out, "Goto L"))
}

func Test_Compile_undeclaredIdentifier_isSemanticError(t *testing.T) {
	u := mustUnit(t)

	_, err := u.Compile(`program Test begin print y; end`)

	require.Error(t, err)
	var diagErr *diag.Error
	require.ErrorAs(t, err, &diagErr)
	assert.Equal(t, diag.KindSemantic, diagErr.Kind)
}

func Test_Compile_typeMismatch_isTypeError(t *testing.T) {
	u := mustUnit(t)

	_, err := u.Compile(`program Test begin var x := 5; var y := "s"; var z := x + y; end`)

	require.Error(t, err)
	var diagErr *diag.Error
	require.ErrorAs(t, err, &diagErr)
	assert.Equal(t, diag.KindType, diagErr.Kind)
}

func Test_Compile_parseError_stillReturnsNoTree(t *testing.T) {
	u := mustUnit(t)

	result, err := u.Compile(`program Test begin var ; end`)

	require.Error(t, err)
	assert.Nil(t, result.Tree)
}
