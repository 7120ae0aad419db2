package lexer

import (
	"testing"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/token"
)

func Test_Lex_keywordsAndSymbols(t *testing.T) {
	tokens, err := Lex(`program Test begin var x := 5; end`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	want := []token.Token{
		{Class: "PROGRAM"},
		{Class: token.ID, Attribute: "Test"},
		{Class: "BEGIN"},
		{Class: "VAR"},
		{Class: token.ID, Attribute: "x"},
		{Class: ":="},
		{Class: token.Number, Attribute: "5"},
		{Class: ";"},
		{Class: "END"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if !tok.Equal(want[i]) {
			t.Fatalf("token %d = %+v, want %+v", i, tok, want[i])
		}
	}
}

func Test_Lex_wordKeywordRequiresBoundary(t *testing.T) {
	tokens, err := Lex(`programming`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Class != token.ID || tokens[0].Attribute != "programming" {
		t.Fatalf("tokens = %+v, want single ID(programming)", tokens)
	}
}

func Test_Lex_symbolOperatorOrdering(t *testing.T) {
	tokens, err := Lex(`<= >= == < >`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []token.Class{"<=", ">=", "==", "<", ">"}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d", len(tokens), len(want))
	}
	for i, tok := range tokens {
		if tok.Class != want[i] {
			t.Fatalf("token %d class = %q, want %q", i, tok.Class, want[i])
		}
	}
}

func Test_Lex_stringLiteral(t *testing.T) {
	tokens, err := Lex(`"hello world"`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Class != token.String || tokens[0].Attribute != "hello world" {
		t.Fatalf("tokens = %+v", tokens)
	}
}

func Test_Lex_commentIsDiscardedButConsumed(t *testing.T) {
	tokens, err := Lex(`var {- a comment -} x`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 2 || tokens[1].Attribute != "x" {
		t.Fatalf("tokens = %+v, want [VAR, ID(x)]", tokens)
	}
}

func Test_Lex_idParen(t *testing.T) {
	tokens, err := Lex(`foo(`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Class != token.IDParen {
		t.Fatalf("tokens = %+v, want single ID_PAREN", tokens)
	}
}

func Test_Lex_unclosedString_isLexError(t *testing.T) {
	_, err := Lex(`"never closed`)
	var de *diag.Error
	if err == nil {
		t.Fatal("expected error")
	}
	if de, _ = err.(*diag.Error); de == nil {
		t.Fatalf("err = %v, want *diag.Error", err)
	}
	if de.Kind != diag.KindLex {
		t.Fatalf("Kind = %v, want KindLex", de.Kind)
	}
}

func Test_Lex_unrecognisedCharacter_isLexError(t *testing.T) {
	_, err := Lex(`VAR x := 5; @ x;`)
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("err = %v, want *diag.Error", err)
	}
	if de == nil || de.Kind != diag.KindLex {
		t.Fatalf("de = %+v, want KindLex", de)
	}
}

func Test_Lex_lineAndColumnTracking(t *testing.T) {
	tokens, err := Lex("var x := 5;\nprint x;")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var printTok *token.Token
	for i := range tokens {
		if tokens[i].Class == "PRINT" {
			printTok = &tokens[i]
		}
	}
	if printTok == nil {
		t.Fatal("PRINT token not found")
	}
	if printTok.Line != 2 || printTok.Col != 1 {
		t.Fatalf("PRINT at %d:%d, want 2:1", printTok.Line, printTok.Col)
	}
	if printTok.SourceLine != "print x;" {
		t.Fatalf("SourceLine = %q, want %q", printTok.SourceLine, "print x;")
	}
}
