package semantic

import (
	"testing"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/lexer"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/syntax"
)

func parseProgram(t *testing.T, src string) *parsetree.Node {
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
	return tree
}

func Test_Analyse_declarationThenUse_succeeds(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 5; print x; end`)
	if err := Analyse(tree); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
}

func Test_Analyse_useBeforeDeclaration_isSemanticError(t *testing.T) {
	tree := parseProgram(t, `program Test begin print y; end`)
	err := Analyse(tree)
	var de *diag.Error
	if err == nil {
		t.Fatal("expected error")
	}
	if de, _ = err.(*diag.Error); de == nil || de.Kind != diag.KindSemantic {
		t.Fatalf("err = %v, want *diag.Error{Kind: KindSemantic}", err)
	}
}

func Test_Analyse_redeclaration_isSemanticError(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 1; var x := 2; end`)
	err := Analyse(tree)
	if err == nil {
		t.Fatal("expected error")
	}
}

func Test_Analyse_reassignmentToDeclaredVariable_succeeds(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 1; x := 2; print x; end`)
	if err := Analyse(tree); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
}

func Test_Analyse_getStatement_requiresPriorDeclaration(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 0; get x; print x; end`)
	if err := Analyse(tree); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
}

func Test_Analyse_getStatement_undeclaredTarget_isSemanticError(t *testing.T) {
	tree := parseProgram(t, `program Test begin get x; end`)
	if err := Analyse(tree); err == nil {
		t.Fatal("expected error: GET target must already be declared")
	}
}

func Test_Analyse_annotatesGlobalScopeOnEveryStatementNode(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 1; print x; end`)
	if err := Analyse(tree); err != nil {
		t.Fatalf("Analyse: %v", err)
	}

	scope, ok := tree.Scope.(*Scope)
	if !ok || scope == nil {
		t.Fatalf("root.Scope = %#v, want *Scope", tree.Scope)
	}
	for _, stmt := range tree.Child("compound").Children {
		if stmt.Scope != scope {
			t.Fatalf("%s.Scope = %#v, want the global scope", stmt.Symbol, stmt.Scope)
		}
	}
	entry, ok := scope.Entry("x")
	if !ok {
		t.Fatal(`expected scope entry for "x"`)
	}
	if len(entry.Assignments) != 1 {
		t.Fatalf("len(Assignments) = %d, want 1", len(entry.Assignments))
	}
}

func Test_Analyse_functionScope_doesNotInheritGlobal(t *testing.T) {
	tree := parseProgram(t, `program Test begin var x := 1; procedure foo(0 n) print x; end end`)
	err := Analyse(tree)
	if err == nil {
		t.Fatal("expected error: function scope must not see global x")
	}
}

func Test_Analyse_functionScope_paramIsUsable(t *testing.T) {
	tree := parseProgram(t, `program Test begin procedure foo(0 n) print n; end end`)
	if err := Analyse(tree); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
}
