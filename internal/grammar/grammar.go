// Package grammar loads a declarative context-free grammar from text, per
// spec.md §4.2: one rule per line, "LHS -> alt1 | alt2 | …", where an
// alternative is a whitespace-separated sequence of quoted terminals and
// bare (optionally "*"-suffixed) non-terminals, or the literal ε for the
// empty production.
package grammar

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/oreo-lang/oreoc/internal/token"
	"github.com/oreo-lang/oreoc/internal/util"
)

// defaultGrammarText is the built-in Oreo grammar (oreo.grammar), embedded so
// the compiler never depends on a file being present at runtime; a caller
// may still load a replacement grammar from disk via Load.
//
//go:embed oreo.grammar
var defaultGrammarText string

// Default loads and validates the built-in Oreo grammar.
func Default() (RuleTable, error) {
	return Load(strings.Split(defaultGrammarText, "\n"))
}

// Symbol is either a Terminal or a NonTerminal. It is a closed sum type:
// the only implementations are defined in this package.
type Symbol interface {
	symbol()
	String() string
}

// Terminal wraps the token class an alternative expects at this position.
type Terminal struct {
	Name token.Class
}

func (Terminal) symbol() {}

func (t Terminal) String() string { return string(t.Name) }

// NonTerminal is a named grammar symbol. Repeating marks Kleene-star
// (zero-or-more) semantics, as produced by a "*" suffix in the grammar text.
type NonTerminal struct {
	Name      string
	Repeating bool
}

func (NonTerminal) symbol() {}

func (nt NonTerminal) String() string {
	if nt.Repeating {
		return nt.Name + "*"
	}
	return nt.Name
}

// Expansion is the right-hand side of one grammar alternative. Epsilon is
// true for the empty production, in which case RHS is always empty.
type Expansion struct {
	RHS     []Symbol
	Epsilon bool
}

func (e Expansion) String() string {
	if e.Epsilon {
		return "ε"
	}
	parts := make([]string, len(e.RHS))
	for i, s := range e.RHS {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// RuleTable maps a non-terminal name to its ordered list of alternatives.
// Order matters: the syntax analyser tries alternatives in this order.
type RuleTable map[string][]Expansion

// Load parses a grammar from its textual form, one rule per non-empty,
// non-comment line, and validates that every non-terminal referenced on a
// right-hand side has at least one expansion of its own.
func Load(lines []string) (RuleTable, error) {
	table := make(RuleTable)

	for lineNum, raw := range lines {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lhs, rhs, ok := strings.Cut(line, "->")
		if !ok {
			return nil, fmt.Errorf("grammar line %d: missing '->': %q", lineNum+1, raw)
		}

		lhsName := strings.TrimSpace(lhs)
		if lhsName == "" {
			return nil, fmt.Errorf("grammar line %d: empty left-hand side", lineNum+1)
		}

		var expansions []Expansion
		for _, alt := range strings.Split(rhs, "|") {
			exp, err := parseExpansion(alt)
			if err != nil {
				return nil, fmt.Errorf("grammar line %d: %w", lineNum+1, err)
			}
			expansions = append(expansions, exp)
		}

		table[lhsName] = append(table[lhsName], expansions...)
	}

	if err := validate(table); err != nil {
		return nil, err
	}

	return table, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

func parseExpansion(alt string) (Expansion, error) {
	fields := strings.Fields(alt)

	if len(fields) == 1 && fields[0] == "ε" {
		return Expansion{Epsilon: true}, nil
	}

	rhs := make([]Symbol, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, `"`) && strings.HasSuffix(f, `"`) && len(f) >= 2 {
			rhs = append(rhs, Terminal{Name: token.Class(f[1 : len(f)-1])})
			continue
		}

		repeating := false
		name := f
		if strings.HasSuffix(name, "*") {
			repeating = true
			name = strings.TrimSuffix(name, "*")
		}
		if name == "" {
			return Expansion{}, fmt.Errorf("empty non-terminal name in alternative %q", alt)
		}
		rhs = append(rhs, NonTerminal{Name: name, Repeating: repeating})
	}

	return Expansion{RHS: rhs}, nil
}

// validate ensures every non-terminal mentioned on a right-hand side has at
// least one expansion defined for it somewhere in the table, reporting every
// undefined name at once rather than stopping at the first.
func validate(table RuleTable) error {
	seen := make(map[string]bool)
	var undefined []string

	for _, expansions := range table {
		for _, exp := range expansions {
			for _, sym := range exp.RHS {
				nt, ok := sym.(NonTerminal)
				if !ok || len(table[nt.Name]) > 0 || seen[nt.Name] {
					continue
				}
				seen[nt.Name] = true
				undefined = append(undefined, nt.Name)
			}
		}
	}

	if len(undefined) > 0 {
		return fmt.Errorf("grammar error: no expansion for %s", util.MakeTextList(undefined))
	}
	return nil
}
