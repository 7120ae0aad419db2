// Package parsetree defines the mutable parse tree shared by every later
// compiler stage: the syntax analyser builds it, the semantic analyser and
// type checker annotate it in place, and the TAC emitter walks it a final
// time to produce code. Per SPEC_FULL.md §3, ownership is expressed with
// plain Go pointers rather than an arena of indices: Children are owned,
// Parent is a non-owning back-edge, and Go's collector tolerates the
// resulting reference cycle, so there is no separate teardown pass.
package parsetree

import (
	"strings"

	"github.com/oreo-lang/oreoc/internal/token"
)

// Node is one production instance in the parse tree. A node is either a
// non-terminal (Symbol set, Tok nil) with zero or more Children, or a
// terminal (Tok set, Symbol equal to the token's class) with no children.
type Node struct {
	// Symbol is the grammar symbol this node was built for: a non-terminal
	// name ("expression", "statement", ...) or, for leaves, the token's
	// class as a string.
	Symbol string

	// Tok is non-nil exactly for terminal (leaf) nodes.
	Tok *token.Token

	// Parent is the non-owning back-edge to the enclosing node; nil at the
	// root. Children own their subtrees.
	Parent   *Node
	Children []*Node

	// Level is the node's depth in the tree, root at 0, used by the
	// pretty-printer to indent.
	Level int

	// Repeating is true for a non-terminal node standing for one iteration
	// of a Kleene-star symbol (grammar.NonTerminal.Repeating). The syntax
	// analyser clones such a node into a fresh sibling each time it
	// successfully expands, and stops (marking Destroy) the first
	// iteration that fails to match.
	Repeating bool

	// Processed marks a node the syntax analyser has finished expanding;
	// used while pruning failed alternatives mid-parse.
	Processed bool

	// Destroy marks a node scheduled for removal from its parent's
	// Children, e.g. a spent epsilon placeholder after Kleene-star
	// flattening.
	Destroy bool

	// Scope, InferredType and TACResult are filled in by later stages
	// (internal/semantic, internal/types, internal/tac respectively). They
	// are opaque here to avoid an import cycle back into those packages;
	// each owns typed accessor helpers (e.g. types.Of) that do the type
	// assertion.
	Scope        interface{}
	InferredType interface{}
	TACResult    interface{}
}

// NewTerminal builds a leaf node from a token.
func NewTerminal(tok token.Token) *Node {
	return &Node{Symbol: string(tok.Class), Tok: &tok}
}

// NewNonTerminal builds an empty non-terminal node for the given symbol.
func NewNonTerminal(symbol string) *Node {
	return &Node{Symbol: symbol}
}

// IsTerminal reports whether n is a leaf (token-bearing) node.
func (n *Node) IsTerminal() bool {
	return n.Tok != nil
}

// AddChild appends child to n's Children, sets child's Parent and Level,
// and returns child for chaining.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	child.Level = n.Level + 1
	n.Children = append(n.Children, child)
	return child
}

// Child returns n's first child whose Symbol equals name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Symbol == name {
			return c
		}
	}
	return nil
}

// HasChild reports whether n has a direct child with the given symbol.
func (n *Node) HasChild(name string) bool {
	return n.Child(name) != nil
}

// HasAnyChild reports whether n has a direct child whose symbol is in names.
func (n *Node) HasAnyChild(names ...string) bool {
	for _, name := range names {
		if n.HasChild(name) {
			return true
		}
	}
	return false
}

// Attribute returns the token attribute of n, or "" if n is a non-terminal.
func (n *Node) Attribute() string {
	if n.Tok == nil {
		return ""
	}
	return n.Tok.Attribute
}

// Prune removes every child marked Destroy from n.Children, recursively.
// The syntax analyser calls this after flattening a Kleene-star
// non-terminal's sibling clones into a single list of matches.
func (n *Node) Prune() {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.Destroy {
			continue
		}
		c.Prune()
		kept = append(kept, c)
	}
	n.Children = kept
}

// CommonAncestor returns the nearest node that is an ancestor of (or equal
// to) both a and b. Used by the type checker's self-assignment skip: an
// assignment is ignored when its common ancestor with the reference is the
// assignment ("a" or "v") node itself.
func CommonAncestor(a, b *Node) *Node {
	for a.Level > b.Level {
		a = a.Parent
	}
	for b.Level > a.Level {
		b = b.Parent
	}
	for a != b {
		a = a.Parent
		b = b.Parent
	}
	return a
}

// Walk calls visit for n and every descendant, pre-order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// String renders n and its subtree as an indented tree, one node per line:
// non-terminals by symbol name, terminals as their token's String form.
// This is the bare structural view; PrintTree adds optional scope/type
// annotations.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteString(strings.Repeat("  ", n.Level))
	if n.IsTerminal() {
		b.WriteString(n.Tok.String())
	} else {
		b.WriteString(n.Symbol)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.write(b)
	}
}

// PrintTree renders n and its subtree like String, optionally annotating
// each line with its Scope and/or InferredType (via the supplied
// stringifying callbacks, since parsetree cannot import the packages that
// own those concrete types). Either callback may be nil to omit that
// annotation. This is spec.md §9's "pretty_print should take explicit
// print-scope/print-type flags" resolved as two optional formatter
// arguments rather than booleans, so callers needn't know parsetree's
// internal line format to control what gets displayed.
func (n *Node) PrintTree(scopeString, typeString func(*Node) string) string {
	var b strings.Builder
	n.writeAnnotated(&b, scopeString, typeString)
	return b.String()
}

func (n *Node) writeAnnotated(b *strings.Builder, scopeString, typeString func(*Node) string) {
	b.WriteString(strings.Repeat("  ", n.Level))
	if n.IsTerminal() {
		b.WriteString(n.Tok.String())
	} else {
		b.WriteString(n.Symbol)
	}

	if scopeString != nil {
		if s := scopeString(n); s != "" {
			b.WriteString(" scope=")
			b.WriteString(s)
		}
	}
	if typeString != nil {
		if t := typeString(n); t != "" {
			b.WriteString(" type=")
			b.WriteString(t)
		}
	}

	b.WriteByte('\n')
	for _, c := range n.Children {
		c.writeAnnotated(b, scopeString, typeString)
	}
}
