// Package types implements oreoc's type checker, per spec.md §4.5: a
// bottom-up, memoised pass over the (already scope-annotated) parse tree
// that assigns every node exactly one Type, resolving identifiers against
// their semantic.Scope and function calls against procedures seen so far.
package types

import (
	"fmt"
	"strings"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/semantic"
	"github.com/oreo-lang/oreoc/internal/token"
)

// Type is one of the four value types in the source language.
type Type int

const (
	Unresolved Type = iota
	NUM
	STR
	BOOL
	NONE
)

func (t Type) String() string {
	switch t {
	case NUM:
		return "NUM"
	case STR:
		return "STR"
	case BOOL:
		return "BOOL"
	case NONE:
		return "NONE"
	default:
		return "unresolved"
	}
}

// Of returns n's resolved type, or Unresolved if n has not been
// type-checked yet.
func Of(n *parsetree.Node) Type {
	if t, ok := n.InferredType.(Type); ok {
		return t
	}
	return Unresolved
}

func isTyped(n *parsetree.Node) bool {
	_, ok := n.InferredType.(Type)
	return ok
}

func setType(n *parsetree.Node, t Type) {
	n.InferredType = t
}

// Checker carries the cross-node state a single type-checking pass needs:
// the growing list of function definitions seen so far, appended to
// before a function's own body is checked so direct recursion resolves.
type Checker struct {
	procedures []*parsetree.Node
}

// Check type-checks root's program body ("compound"), in place.
func Check(root *parsetree.Node) error {
	c := &Checker{}
	compound := root.Child("compound")
	if compound == nil {
		return nil
	}
	return c.check(compound)
}

func (c *Checker) check(node *parsetree.Node) error {
	if isTyped(node) {
		return nil
	}

	if node.Symbol == "function_definition" {
		c.procedures = append(c.procedures, node)
	}

	for _, child := range node.Children {
		if err := c.check(child); err != nil {
			return err
		}
	}

	switch {
	case node.Symbol == "function_definition":
		setType(node, Of(node.Child("function_compound")))

	case node.Symbol == "function_compound":
		c.checkFunctionCompound(node)

	case node.Symbol == "return_statement":
		c.checkReturnStatement(node)

	case node.Symbol == "arg_type":
		setType(node, Of(node.Children[0]))

	case node.Symbol == "expression":
		return c.checkWithOptionalCombiner(node, "and_or_b", "compare_expr", BOOL)

	case node.Symbol == "compare_expr":
		return c.checkCompareExpr(node)

	case node.Symbol == "simple_expr":
		return c.checkWithOptionalCombiner(node, "add_sub", "term", NUM)

	case node.Symbol == "term":
		return c.checkWithOptionalCombiner(node, "mul_div", "factor", NUM)

	case node.Symbol == "factor":
		return c.checkFactor(node)

	case node.Symbol == "bool":
		return c.checkBool(node)

	case node.Symbol == "i", node.Symbol == "w":
		return CheckCondition(node.Child("bool"))

	case node.Symbol == "var_assign":
		setType(node, Of(node.Child("expression")))

	case node.Symbol == "and_or_b":
		if err := requireType(node.Child("compare_expr"), BOOL); err != nil {
			return err
		}
		setType(node, BOOL)

	case node.Symbol == "add_sub":
		if err := requireType(node.Child("term"), NUM); err != nil {
			return err
		}
		setType(node, NUM)

	case node.Symbol == "mul_div":
		if err := requireType(node.Child("factor"), NUM); err != nil {
			return err
		}
		setType(node, NUM)

	case node.Symbol == string(token.ID):
		t, err := c.resolveIdentifierType(node)
		if err != nil {
			return err
		}
		setType(node, t)

	case node.Symbol == string(token.Number):
		setType(node, NUM)

	case node.Symbol == "TRUE", node.Symbol == "FALSE":
		setType(node, BOOL)

	case node.Symbol == string(token.String), node.Symbol == "GET":
		setType(node, STR)
	}

	return nil
}

func (c *Checker) checkFunctionCompound(node *parsetree.Node) {
	result := NONE
	for _, child := range node.Children {
		if ret := child.Child("return_statement"); ret != nil {
			result = Of(ret)
		}
	}
	setType(node, result)
}

func (c *Checker) checkReturnStatement(node *parsetree.Node) {
	if optExpr := node.Child("optional_expr"); optExpr != nil && len(optExpr.Children) > 0 {
		setType(node, Of(optExpr.Children[0]))
		return
	}
	setType(node, NONE)
}

// checkBool type-checks "bool": a simple_expr, optionally followed directly
// by a relative_operator and a further expression (the parser's bool_tail
// wrapper is flattened away before this runs - see
// internal/syntax/syntax.go's flattenBoolTails). When the comparison is
// present, both sides must be NUM and the result is BOOL; otherwise bool
// simply inherits simple_expr's own type, so it can stand for any
// printable value as well as a condition. if/while additionally require
// the condition's type to be BOOL (see CheckCondition).
func (c *Checker) checkBool(node *parsetree.Node) error {
	simple := node.Child("simple_expr")

	if relOp := node.Child("relative_operator"); relOp != nil {
		if err := requireType(simple, NUM); err != nil {
			return err
		}
		if err := requireType(node.Child("expression"), NUM); err != nil {
			return err
		}
		setType(node, BOOL)
		return nil
	}

	setType(node, Of(simple))
	return nil
}

// CheckCondition additionally requires that an if/while condition node
// (a "bool") actually resolved to BOOL, beyond what checkBool enforces on
// its own - print statements reuse "bool" too but don't need this.
func CheckCondition(boolNode *parsetree.Node) error {
	return requireType(boolNode, BOOL)
}

func (c *Checker) checkCompareExpr(node *parsetree.Node) error {
	compE := node.Child("comp_e")
	if compE != nil && len(compE.Children) > 0 {
		if err := requireType(node.Child("simple_expr"), NUM); err != nil {
			return err
		}
		setType(node, BOOL)
		return nil
	}
	setType(node, Of(node.Child("simple_expr")))
	return nil
}

// checkWithOptionalCombiner handles the common "X -> base combiner" shape
// shared by expression/and_or_b, simple_expr/add_sub and term/mul_div: if
// the trailing combiner actually matched (non-epsilon), both operands of
// that combiner must already have the required type and the node's type
// is fixed accordingly; otherwise the node just inherits base's type.
func (c *Checker) checkWithOptionalCombiner(node *parsetree.Node, combinerName, baseName string, required Type) error {
	base := node.Child(baseName)
	combiner := node.Child(combinerName)

	if combiner != nil && len(combiner.Children) > 0 {
		if err := requireType(base, required); err != nil {
			return err
		}
		setType(node, required)
		return nil
	}

	setType(node, Of(base))
	return nil
}

func (c *Checker) checkFactor(node *parsetree.Node) error {
	if len(node.Children) == 1 {
		setType(node, Of(node.Children[0]))
		return nil
	}
	if node.HasAnyChild("TRUE", "FALSE", "NOT") {
		setType(node, BOOL)
		return nil
	}
	if expr := node.Child("expression"); expr != nil {
		setType(node, Of(expr))
		return nil
	}
	if node.HasChild(string(token.IDParen)) {
		return c.checkFunctionCall(node, false)
	}
	return diag.New(diag.KindType, 0, 0, fmt.Sprintf("internal error: cannot type-check factor %q", node.Symbol), "")
}

func (c *Checker) checkFunctionCall(node *parsetree.Node, noneReturnAllowed bool) error {
	idParen := node.Child(string(token.IDParen))
	called := idParen.Attribute()

	for _, proc := range c.procedures {
		if proc.Child(string(token.IDParen)).Attribute() == called {
			if Of(proc) == NONE && !noneReturnAllowed {
				return diag.New(diag.KindType, idParen.Tok.Line, idParen.Tok.Col,
					"cannot use a procedure that returns nothing as a value", idParen.Tok.SourceLine)
			}
			setType(node, Of(proc))
			return nil
		}
	}

	return diag.New(diag.KindType, idParen.Tok.Line, idParen.Tok.Col,
		fmt.Sprintf("call to undeclared procedure %s", called), idParen.Tok.SourceLine)
}

// resolveIdentifierType is the ID terminal's type resolution: a function
// parameter's type was fixed at declaration time (ScopeEntry.DeclaredType);
// any other identifier's type comes from the most recent assignment whose
// position precedes or equals node's, skipping self-assignments (an
// assignment whose own id-node is a common ancestor with node via the
// assignment's own node - "x := x + 1" must not try to infer x's type
// from the very assignment it's part of).
func (c *Checker) resolveIdentifierType(node *parsetree.Node) (Type, error) {
	scope, _ := node.Scope.(*semantic.Scope)
	name := node.Attribute()
	tok := *node.Tok

	entry, ok := scope.Entry(name)
	if !ok {
		return Unresolved, diag.New(diag.KindSemantic, tok.Line, tok.Col,
			fmt.Sprintf("use of undeclared identifier %s", name), tok.SourceLine)
	}

	if declared, ok := entry.DeclaredType.(token.Class); ok {
		return typeFromSampleClass(declared), nil
	}

	latest := Unresolved
	for _, assignment := range entry.Assignments {
		if !isBeforeOrAt(*assignment.IDNode.Tok, tok) {
			continue
		}

		ancestor := parsetree.CommonAncestor(assignment.IDNode, node)
		if ancestor.Symbol == "a" || ancestor.Symbol == "v" {
			continue
		}

		if !isTyped(assignment.ValueNode) {
			if err := c.check(assignment.ValueNode); err != nil {
				return Unresolved, err
			}
		}
		latest = Of(assignment.ValueNode)
	}

	if latest == Unresolved && !(tok.Line == entry.DeclareToken.Line && tok.Col == entry.DeclareToken.Col) {
		return Unresolved, diag.New(diag.KindSemantic, tok.Line, tok.Col,
			fmt.Sprintf("variable %s never assigned to", name), tok.SourceLine)
	}

	return latest, nil
}

func typeFromSampleClass(class token.Class) Type {
	switch class {
	case token.Number:
		return NUM
	case token.String:
		return STR
	case "TRUE", "FALSE":
		return BOOL
	default:
		return Unresolved
	}
}

func isBeforeOrAt(a, b token.Token) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Col <= b.Col)
}

// requireType raises a TypeError if node's type is not want, anchored at
// the leftmost terminal descendant of node for a useful position.
func requireType(node *parsetree.Node, want Type) error {
	got := Of(node)
	if got == want {
		return nil
	}

	leaf := node
	for !leaf.IsTerminal() && len(leaf.Children) > 0 {
		leaf = leaf.Children[0]
	}

	var line, col int
	var sourceLine string
	if leaf.Tok != nil {
		line, col, sourceLine = leaf.Tok.Line, leaf.Tok.Col, leaf.Tok.SourceLine
	}

	return diag.New(diag.KindType, line, col,
		fmt.Sprintf("%s has type %s, should be %s", strings.ToLower(node.Symbol), got, want), sourceLine)
}
