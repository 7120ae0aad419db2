// Package diag implements oreoc's uniform diagnostic format, shared by the
// lexer, syntax analyser, semantic analyser and type checker: a coloured
// "<Kind> on line L:C: message", the offending source line with the bad
// token highlighted, and a caret pointing at the exact column.
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// messageWrapWidth is how wide a diagnostic's message text is allowed to get
// before FullMessage wraps it onto a continuation line, long enough that
// ordinary one-line messages never wrap.
const messageWrapWidth = 96

// Kind identifies which stage raised the diagnostic. All four share the same
// rendering; Kind only changes the word printed before "on line".
type Kind string

const (
	KindLex      Kind = "Lex error"
	KindParse    Kind = "Parse error"
	KindSemantic Kind = "Semantic error"
	KindType     Kind = "Type error"
)

// ANSI escapes used when colour output is requested. These are applied by
// FullMessage, never baked into Message itself, so the same Error renders
// identically whether or not a terminal is attached.
const (
	red    = "\033[91m"
	blue   = "\033[34m"
	yellow = "\033[33m"
	reset  = "\033[0m"
)

// Error is the single diagnostic type shared by every stage of the
// compiler. The zero value with Line == 0 renders without a source
// context line, for diagnostics that have no specific anchor (e.g. a
// grammar-validation failure discovered before any token was read).
type Error struct {
	Kind Kind

	// Line and Col are 1-based. Line == 0 means "no position available."
	Line int
	Col  int

	Message string

	// SourceLine is the full text of the line the error occurred on, used
	// to render the context line and caret. Positionless errors (Line == 0)
	// may leave it blank or carry a placeholder (the parser's end-of-file
	// error with no prior token uses "<No content to parse>"); it is not
	// rendered for them.
	SourceLine string

	// cause, if set, is returned by Unwrap.
	cause error
}

// New builds a positioned diagnostic.
func New(kind Kind, line, col int, message, sourceLine string) *Error {
	return &Error{Kind: kind, Line: line, Col: col, Message: message, SourceLine: sourceLine}
}

// Wrap builds a positioned diagnostic that wraps a lower-level cause.
func Wrap(kind Kind, line, col int, message, sourceLine string, cause error) *Error {
	return &Error{Kind: kind, Line: line, Col: col, Message: message, SourceLine: sourceLine, cause: cause}
}

// Error implements the error interface with the plain, uncoloured one-line
// form of the diagnostic.
func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s on line %d:%d: %s", e.Kind, e.Line, e.Col, e.Message)
}

// Unwrap returns the error this diagnostic wraps, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// FullMessage renders the complete diagnostic: the headline, the source
// line with the offending token highlighted, and a caret line under it.
// Colour escapes are included only when color is true; callers decide that
// by checking isatty (or an explicit --color flag) before calling this, so
// that diag itself never looks at the environment.
func (e *Error) FullMessage(color bool) string {
	message := rosed.Edit(e.Message).Wrap(messageWrapWidth).String()

	headline := fmt.Sprintf("%s: %s", e.Kind, message)
	if e.Line != 0 {
		headline = fmt.Sprintf("%s on line %d:%d: %s", e.Kind, e.Line, e.Col, message)
	}
	if color {
		headline = fmt.Sprintf("%s%s on line %s%d:%d%s: %s%s", red, e.Kind, yellow, e.Line, e.Col, red, message, reset)
	}

	if e.Line == 0 || e.SourceLine == "" {
		return headline
	}

	contextLine := e.SourceLine
	if color {
		contextLine = highlightErrorToken(e.Col, e.SourceLine)
	}

	arrow := arrowPointingToErrorToken(e.Col, e.SourceLine, color)

	return headline + "\n" + contextLine + "\n" + arrow
}

// highlightErrorToken reddens the offending token (from col to the next
// space, or end of line) within the context line.
func highlightErrorToken(col int, contextLine string) string {
	runes := []rune(contextLine)

	nextSpace := len(runes)
	if col-1 < len(runes) {
		if idx := strings.IndexRune(string(runes[col-1:]), ' '); idx >= 0 {
			nextSpace = (col - 1) + len([]rune(string(runes[col-1:])[:idx]))
		}
	}

	start := col - 1
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	if nextSpace > len(runes) {
		nextSpace = len(runes)
	}
	if nextSpace < start {
		nextSpace = start
	}

	return string(runes[:start]) + red + string(runes[start:nextSpace]) + reset + string(runes[nextSpace:])
}

// arrowPointingToErrorToken builds the caret line, preserving literal tabs
// from the context line so the caret lines up under proportional or
// monospace rendering either way, matching the original's tab-preserving
// cursor line.
func arrowPointingToErrorToken(col int, contextLine string, color bool) string {
	runes := []rune(contextLine)
	upTo := col
	if upTo > len(runes) {
		upTo = len(runes)
	}
	if upTo < 0 {
		upTo = 0
	}

	prefix := runes[:upTo]
	numTabs := strings.Count(string(prefix), "\t")
	numNonTabs := col - numTabs - 1
	if numNonTabs < 0 {
		numNonTabs = 0
	}

	line := strings.Repeat("\t", numTabs) + strings.Repeat(" ", numNonTabs)
	if color {
		return line + blue + "↑" + reset
	}
	return line + "↑"
}
