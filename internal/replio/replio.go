// Package replio reads Oreo source from an interactive terminal, one
// statement at a time, for `oreoc-repl` (SPEC_FULL.md §6.2). It is built on
// github.com/chzyer/readline exactly as internal/input's
// InteractiveCommandReader is, widened to track block nesting (IF/WHILE/
// PROCEDURE opened, END closed) with a util.Stack so the REPL knows when an
// accumulated run of lines is a complete statement worth handing to one
// compilation unit, rather than sending each physical line on its own.
package replio

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/oreo-lang/oreoc/internal/util"
)

const (
	freshPrompt        = "oreo> "
	continuationPrompt = "...> "
)

// opensBlock are the word keywords that open a construct closed by END.
var opensBlock = map[string]bool{
	"IF": true, "WHILE": true, "PROCEDURE": true,
}

// Reader reads whole statements from stdin via GNU-readline-style editing.
// The returned Reader must have Close called on it before disposal.
type Reader struct {
	rl *readline.Instance
}

// NewReader starts a fresh interactive reader.
func NewReader() (*Reader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: freshPrompt})
	if err != nil {
		return nil, fmt.Errorf("replio: create readline config: %w", err)
	}
	return &Reader{rl: rl}, nil
}

// Close releases readline's terminal resources.
func (r *Reader) Close() error {
	return r.rl.Close()
}

// ReadStatement blocks until a full statement has been entered (tracking
// IF/WHILE/PROCEDURE...END nesting across lines) and returns its source
// text, newline-joined. Returns io.EOF once the user ends the session.
func (r *Reader) ReadStatement() (string, error) {
	var lines []string
	var depth util.Stack[string]

	for {
		if depth.Empty() {
			r.rl.SetPrompt(freshPrompt)
		} else {
			r.rl.SetPrompt(continuationPrompt)
		}

		line, err := r.rl.Readline()
		if err != nil {
			if len(lines) > 0 && (err == io.EOF || err == readline.ErrInterrupt) {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" && depth.Empty() {
			continue
		}

		lines = append(lines, line)
		updateDepth(&depth, trimmed)

		if depth.Empty() {
			return strings.Join(lines, "\n"), nil
		}
	}
}

// updateDepth pushes one entry per block-opening keyword found on the line
// and pops one per "END", in the order encountered — an approximation of
// real nesting that's good enough to decide when to stop reading, since the
// actual nesting structure is validated properly once the line is parsed.
func updateDepth(depth *util.Stack[string], trimmed string) {
	for _, word := range strings.Fields(strings.ToUpper(trimmed)) {
		word = strings.TrimRight(word, ";,")
		switch {
		case opensBlock[word]:
			depth.Push(word)
		case word == "END" && !depth.Empty():
			depth.Pop()
		}
	}
}
