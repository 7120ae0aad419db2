// Package syntax implements oreoc's predictive recursive-descent parser,
// per spec.md §4.3: at each non-terminal node it asks the grammar's rule
// table which alternative the next token predicts (a one-token first-set
// oracle, recursing through leading non-terminals), expands that
// alternative's symbols as children, and repeats depth-first until the
// tree is complete or a token fails to match what the tree predicted.
package syntax

import (
	"fmt"
	"strings"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/token"
)

// Parser holds the grammar a source program is checked against.
type Parser struct {
	table grammar.RuleTable
}

// New builds a Parser for the given rule table.
func New(table grammar.RuleTable) *Parser {
	return &Parser{table: table}
}

// Parse consumes tokens against the grammar's start symbol "p" and returns
// the resulting parse tree, or the first *diag.Error encountered.
func (p *Parser) Parse(tokens []token.Token) (*parsetree.Node, error) {
	return p.ParseSymbol("p", tokens)
}

// ParseSymbol is Parse generalised to start from any non-terminal in the
// grammar, not just "p" — used by cmd/repl to parse one accumulated
// "statement" at a time instead of a whole "PROGRAM ... END" unit.
func (p *Parser) ParseSymbol(startSymbol string, tokens []token.Token) (*parsetree.Node, error) {
	root := parsetree.NewNonTerminal(startSymbol)

	if err := p.parseTokens(root, &tokens); err != nil {
		return nil, err
	}

	root.Prune()
	flattenBoolTails(root)
	return root, nil
}

// flattenBoolTails splices away the "bool_tail" wrapper the grammar's
// shared-prefix continuation ("bool -> simple_expr bool_tail") needs to
// stay within the one-token oracle's reach (see oreo.grammar's comment on
// "bool"): once parsing is done the wrapper carries no information of its
// own, so every "bool" node holding one has its bool_tail child's own
// children ("relative_operator", "expression") spliced in directly in its
// place, matching spec.md §8's flat "bool" shape (and the original
// typechecker's, which never sees a wrapper at all).
func flattenBoolTails(root *parsetree.Node) {
	root.Walk(func(n *parsetree.Node) {
		if n.Symbol != "bool" {
			return
		}
		tail := n.Child("bool_tail")
		if tail == nil {
			return
		}

		spliced := make([]*parsetree.Node, 0, len(n.Children)-1+len(tail.Children))
		for _, c := range n.Children {
			if c != tail {
				spliced = append(spliced, c)
				continue
			}
			for _, grandchild := range tail.Children {
				grandchild.Parent = n
				shiftLevel(grandchild, -1)
				spliced = append(spliced, grandchild)
			}
		}
		n.Children = spliced
	})
}

// shiftLevel adds delta to n's Level and every descendant's, keeping
// Node.Level (used for indentation) consistent after a node is spliced to
// a different depth.
func shiftLevel(n *parsetree.Node, delta int) {
	n.Level += delta
	for _, c := range n.Children {
		shiftLevel(c, delta)
	}
}

// parseTokens drives the whole tree to completion depth-first, mirroring
// ParseTreeNode.parse_tokens: repeatedly find the next unprocessed node,
// either expand it (non-terminal) or consume a token against it
// (terminal), until no node remains.
func (p *Parser) parseTokens(root *parsetree.Node, tokens *[]token.Token) error {
	var prevToken *token.Token

	for {
		node := getNextNode(root)

		if err := handleEOFErrors(node, prevToken, *tokens); err != nil {
			return err
		}
		if node == nil {
			return nil
		}

		next := (*tokens)[0]
		prevToken = &next

		if !node.IsTerminal() {
			if err := p.expand(node, tokens); err != nil {
				return err
			}
			continue
		}

		if node.Tok.Class == next.Class {
			consumed := next
			node.Tok = &consumed
			node.Processed = true
			*tokens = (*tokens)[1:]
			continue
		}

		return diag.New(diag.KindParse, next.Line, next.Col,
			fmt.Sprintf("expected '%s', got '%s'", strings.ToLower(string(node.Tok.Class)), strings.ToLower(next.String())),
			next.SourceLine)
	}
}

// getNextNode returns the next unprocessed node in the tree, depth-first,
// pruning any already-Destroy children along the way, or nil if every
// node has been processed.
func getNextNode(n *parsetree.Node) *parsetree.Node {
	if !n.Processed {
		return n
	}

	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.Destroy {
			continue
		}
		kept = append(kept, c)
	}
	n.Children = kept

	for _, c := range n.Children {
		if found := getNextNode(c); found != nil {
			return found
		}
	}

	return nil
}

// handleEOFErrors reports the two end-of-file error shapes: leftover
// tokens after the tree is complete ("expected END OF FILE"), and running
// out of tokens mid-tree ("expected X, got END OF FILE").
func handleEOFErrors(node *parsetree.Node, prevToken *token.Token, tokens []token.Token) error {
	if node == nil {
		if len(tokens) > 0 {
			next := tokens[0]
			return diag.New(diag.KindParse, next.Line, next.Col,
				fmt.Sprintf("expected END OF FILE, got '%s'", strings.ToLower(next.String())),
				next.SourceLine)
		}
		return nil
	}

	if len(tokens) > 0 {
		return nil
	}

	var line, col int
	var sourceLine string
	if prevToken != nil {
		line = prevToken.Line
		col = len(strings.TrimRight(prevToken.SourceLine, " \t\r\n"))
		sourceLine = prevToken.SourceLine
	} else {
		sourceLine = "<No content to parse>"
	}

	return diag.New(diag.KindParse, line, col,
		fmt.Sprintf("expected '%s', got END OF FILE", strings.ToLower(expectedSymbolName(node))),
		sourceLine)
}

// expectedSymbolName is what handleEOFErrors names as "expected": the
// terminal's class, or the non-terminal's symbol name.
func expectedSymbolName(n *parsetree.Node) string {
	if n.IsTerminal() {
		return string(n.Tok.Class)
	}
	return n.Symbol
}

// expand chooses an alternative for node's non-terminal from the next
// token, builds node's children from it, and — for a Kleene-star
// non-terminal — inserts a fresh sibling standing for the next iteration.
func (p *Parser) expand(node *parsetree.Node, tokens *[]token.Token) error {
	next := (*tokens)[0]

	expansion, epsilon, found := findExpansion(p.table, node.Symbol, next.Class)
	if !found {
		if node.Repeating {
			node.Destroy = true
			return nil
		}
		return diag.New(diag.KindParse, next.Line, next.Col,
			fmt.Sprintf("expected a valid %s, got '%s'", strings.ReplaceAll(node.Symbol, "_", " "), strings.ToLower(next.String())),
			next.SourceLine)
	}

	node.Processed = true

	if node.Repeating {
		insertRepeatingSibling(node)
	}

	if epsilon {
		node.Destroy = true
		return nil
	}

	for _, sym := range expansion.RHS {
		switch s := sym.(type) {
		case grammar.Terminal:
			node.AddChild(parsetree.NewTerminal(token.Token{Class: s.Name}))
		case grammar.NonTerminal:
			child := node.AddChild(parsetree.NewNonTerminal(s.Name))
			child.Repeating = s.Repeating
		}
	}

	return nil
}

// insertRepeatingSibling clones node's Kleene-star symbol into a fresh,
// unprocessed sibling immediately after node, so the next pass over the
// tree attempts one further iteration.
func insertRepeatingSibling(node *parsetree.Node) {
	parent := node.Parent
	duplicate := parsetree.NewNonTerminal(node.Symbol)
	duplicate.Repeating = true
	duplicate.Parent = parent
	duplicate.Level = node.Level

	idx := -1
	for i, c := range parent.Children {
		if c == node {
			idx = i
			break
		}
	}

	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+2:], parent.Children[idx+1:])
	parent.Children[idx+1] = duplicate
}

// findExpansion is the one-token first-set oracle: it walks lhs's
// alternatives in declared order and returns the first one whose leading
// symbol could start with next — a leading terminal matches if its class
// equals next, and a leading non-terminal matches if it can (recursively,
// by the same rule) start with next. Only when no alternative matches that
// way does it fall back to the first epsilon alternative, or to the first
// alternative led by a Kleene-star non-terminal (which may repeat zero
// times), whichever is declared first.
func findExpansion(table grammar.RuleTable, lhs string, next token.Class) (grammar.Expansion, bool, bool) {
	var fallback *grammar.Expansion
	for i, exp := range table[lhs] {
		if exp.Epsilon {
			if fallback == nil {
				fallback = &table[lhs][i]
			}
			continue
		}

		switch first := exp.RHS[0].(type) {
		case grammar.Terminal:
			if first.Name == next {
				return exp, false, true
			}
		case grammar.NonTerminal:
			if _, _, ok := findExpansion(table, first.Name, next); ok {
				return exp, false, true
			}
			if first.Repeating && fallback == nil {
				fallback = &table[lhs][i]
			}
		}
	}

	if fallback != nil {
		return *fallback, fallback.Epsilon, true
	}
	return grammar.Expansion{}, false, false
}
