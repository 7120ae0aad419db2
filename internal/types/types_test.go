package types

import (
	"testing"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/lexer"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/semantic"
	"github.com/oreo-lang/oreoc/internal/syntax"
)

func parseAndAnalyse(t *testing.T, src string) *parsetree.Node {
	t.Helper()
	table, err := grammar.Default()
	if err != nil {
		t.Fatalf("grammar.Default: %v", err)
	}
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lexer.Lex: %v", err)
	}
	tree, err := syntax.New(table).Parse(tokens)
	if err != nil {
		t.Fatalf("syntax.Parse: %v", err)
	}
	if err := semantic.Analyse(tree); err != nil {
		t.Fatalf("semantic.Analyse: %v", err)
	}
	return tree
}

func Test_Check_numericAssignment_resolvesNUM(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; end`)
	if err := Check(tree); err != nil {
		t.Fatalf("Check: %v", err)
	}
	var got Type
	tree.Walk(func(n *parsetree.Node) {
		if n.Symbol == "var_assign" {
			got = Of(n)
		}
	})
	if got != NUM {
		t.Fatalf("var_assign type = %s, want NUM", got)
	}
}

func Test_Check_typeMismatchInArithmetic_isTypeError(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; var y := "s"; var z := x + y; end`)
	err := Check(tree)
	var de *diag.Error
	if err == nil {
		t.Fatal("expected error")
	}
	if de, _ = err.(*diag.Error); de == nil || de.Kind != diag.KindType {
		t.Fatalf("err = %v, want *diag.Error{Kind: KindType}", err)
	}
}

func Test_Check_ifCondition_mustBeBool(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; if x then print x; end end`)
	err := Check(tree)
	if err == nil {
		t.Fatal("expected error: IF condition must be BOOL, not NUM")
	}
}

func Test_Check_comparisonRightOperandMustBeNum_isTypeError(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; if x < "hello" then print x; end end`)
	err := Check(tree)
	var de *diag.Error
	if err == nil {
		t.Fatal("expected error: comparison right-hand side must be NUM")
	}
	if de, _ = err.(*diag.Error); de == nil || de.Kind != diag.KindType {
		t.Fatalf("err = %v, want *diag.Error{Kind: KindType}", err)
	}
}

func Test_Check_ifCondition_comparisonIsBool(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; if x < 10 then print x; end end`)
	if err := Check(tree); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func Test_Check_printAcceptsNonBoolValue(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 5; print x; end`)
	if err := Check(tree); err != nil {
		t.Fatalf("Check: print should accept a bare NUM, got %v", err)
	}
}

func Test_Check_whileCondition_mustBeBool(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x := 0; while x do x := x + 1; end end`)
	if err := Check(tree); err == nil {
		t.Fatal("expected error: WHILE condition must be BOOL")
	}
}

func Test_Check_stringConcatenationViaPlus_isTypeError(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var s := "a" + "b"; end`)
	if err := Check(tree); err == nil {
		t.Fatal("expected error: + requires NUM operands")
	}
}

func Test_Check_neverAssignedVariable_isError(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin var x; print x; end`)
	if err := Check(tree); err == nil {
		t.Fatal("expected error: x is never assigned a value")
	}
}

func Test_Check_functionReturnTypeFlowsToCallSite(t *testing.T) {
	tree := parseAndAnalyse(t, `program Test begin procedure foo(0 n) return n + 1; end var x := foo(5); end`)
	if err := Check(tree); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func Test_Type_String(t *testing.T) {
	cases := map[Type]string{NUM: "NUM", STR: "STR", BOOL: "BOOL", NONE: "NONE", Unresolved: "unresolved"}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
