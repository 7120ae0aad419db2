// Package cache serialises intermediate compiler artifacts (a token
// stream, a compiled TAC program) to a content-stable binary snapshot on
// disk, per SPEC_FULL.md §6.2's --emit-cache flag: a byte-stable file a
// test harness (or a human) can diff against without re-running the
// compiler. It uses github.com/dekarrin/rezi the same way
// server/dao/sqlite encodes a *game.State: EncBinary to a []byte, DecBinary
// back into a zero value of the same shape.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"

	"github.com/oreo-lang/oreoc/internal/token"
)

// TokenSnapshot is what --emit-cache writes for `oreoc-lex`.
type TokenSnapshot struct {
	RunID  string
	Tokens []TokenRecord
}

// TokenRecord is token.Token flattened to rezi-friendly exported fields
// (token.Class is itself just a string, but rezi encodes declared struct
// shapes, not arbitrary interface values, so the record is spelled out
// explicitly rather than embedding token.Token directly).
type TokenRecord struct {
	Class      string
	Attribute  string
	Line       int
	Col        int
	SourceLine string
}

// LineSnapshot is what --emit-cache writes for any already-rendered text
// listing: a TAC program's instructions (`oreoc-parser --tac`) or a parse
// tree's dump. The TAC types themselves (Variable, Label, Instruction) are
// pointer-heavy and carry no rezi struct tags, so the cache stores their
// already-rendered text instead of trying to round-trip the object graph.
type LineSnapshot struct {
	RunID string
	Lines []string
}

func newTokenSnapshot(runID string, tokens []token.Token) TokenSnapshot {
	records := make([]TokenRecord, len(tokens))
	for i, t := range tokens {
		records[i] = TokenRecord{
			Class:      string(t.Class),
			Attribute:  t.Attribute,
			Line:       t.Line,
			Col:        t.Col,
			SourceLine: t.SourceLine,
		}
	}
	return TokenSnapshot{RunID: runID, Tokens: records}
}

// SaveTokens writes tokens to <dir>/<runID>-tokens.rz and returns the path.
func SaveTokens(dir, runID string, tokens []token.Token) (string, error) {
	snapshot := newTokenSnapshot(runID, tokens)
	return save(dir, runID+"-tokens.rz", &snapshot)
}

// LoadTokens reads back a snapshot written by SaveTokens.
func LoadTokens(path string) (TokenSnapshot, error) {
	var snapshot TokenSnapshot
	err := load(path, &snapshot)
	return snapshot, err
}

// SaveLines writes rendered to <dir>/<runID>-<tag>.rz and returns the path.
// tag distinguishes what kind of listing it is ("tac", "tree", ...).
func SaveLines(dir, runID, tag string, rendered []string) (string, error) {
	snapshot := LineSnapshot{RunID: runID, Lines: rendered}
	return save(dir, runID+"-"+tag+".rz", &snapshot)
}

// LoadLines reads back a snapshot written by SaveLines.
func LoadLines(path string) (LineSnapshot, error) {
	var snapshot LineSnapshot
	err := load(path, &snapshot)
	return snapshot, err
}

func save(dir, name string, v interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cache: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	data := rezi.EncBinary(v)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("cache: write %s: %w", path, err)
	}
	return path, nil
}

func load(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cache: read %s: %w", path, err)
	}

	n, err := rezi.DecBinary(data, v)
	if err != nil {
		return fmt.Errorf("cache: decode %s: %w", path, err)
	}
	if n != len(data) {
		return fmt.Errorf("cache: %s: decoded %d/%d bytes", path, n, len(data))
	}
	return nil
}
