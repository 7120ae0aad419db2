package diag

import (
	"strings"
	"testing"
)

func Test_Error_plainMessage(t *testing.T) {
	e := New(KindLex, 3, 5, "unrecognised token", "VAR @;")
	want := "Lex error on line 3:5: unrecognised token"
	if got := e.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func Test_Error_positionless(t *testing.T) {
	e := New(KindParse, 0, 0, "no content to parse", "")
	want := "Parse error: no content to parse"
	if got := e.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func Test_FullMessage_uncoloredHasCaretLine(t *testing.T) {
	e := New(KindSemantic, 1, 5, "undeclared identifier 'y'", "PRINT y;")
	full := e.FullMessage(false)
	lines := strings.Split(full, "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3: %q", len(lines), full)
	}
	if !strings.Contains(lines[0], "Semantic error on line 1:5") {
		t.Fatalf("headline = %q", lines[0])
	}
	if lines[1] != "PRINT y;" {
		t.Fatalf("context line = %q", lines[1])
	}
	if strings.TrimSpace(lines[2]) != "↑" {
		t.Fatalf("caret line = %q", lines[2])
	}
}

func Test_FullMessage_coloredIncludesEscapes(t *testing.T) {
	e := New(KindType, 2, 1, "type mismatch", "x + y;")
	full := e.FullMessage(true)
	if !strings.Contains(full, red) || !strings.Contains(full, reset) {
		t.Fatalf("expected ANSI escapes in colored output: %q", full)
	}
}

func Test_FullMessage_noSourceLine_omitsContext(t *testing.T) {
	e := New(KindParse, 0, 0, "<No content to parse>", "")
	full := e.FullMessage(false)
	if strings.Contains(full, "\n") {
		t.Fatalf("expected single-line message, got %q", full)
	}
}

func Test_FullMessage_wrapsLongMessage(t *testing.T) {
	long := strings.Repeat("word ", 40)
	e := New(KindType, 1, 1, long, "x;")
	full := e.FullMessage(false)
	for _, line := range strings.Split(full, "\n") {
		if len(line) > 160 {
			t.Fatalf("line exceeds expected wrap width: %q", line)
		}
	}
}

func Test_Wrap_unwrapsCause(t *testing.T) {
	cause := New(KindLex, 1, 1, "inner", "x")
	outer := Wrap(KindParse, 1, 1, "outer", "x", cause)
	if outer.Unwrap() != cause {
		t.Fatal("Unwrap() did not return the wrapped cause")
	}
}

func Test_arrowPointingToErrorToken_preservesTabs(t *testing.T) {
	line := "\tVAR x"
	arrow := arrowPointingToErrorToken(6, line, false)
	if !strings.HasPrefix(arrow, "\t") {
		t.Fatalf("arrow = %q, want leading tab preserved", arrow)
	}
}
