// Package semantic walks a parse tree and attaches a Scope to every node,
// enforcing the declaration-before-use and single-declaration invariants
// of spec.md §4.4: one global scope for the program body, and one fresh,
// non-inheriting scope per function definition.
package semantic

import (
	"fmt"

	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/token"
)

// Assignment records one `{id_node, value_node}` pair in source order: an
// identifier use on a scope entry's declared name, and the node whose
// eventual type that use takes on.
type Assignment struct {
	IDNode    *parsetree.Node
	ValueNode *parsetree.Node
}

// ScopeEntry is what a Scope maps an identifier name to: the token that
// declared it and every subsequent assignment, in source order.
//
// DeclaredType is set only for function parameters (SPEC_FULL.md §3's
// resolution of the "argument type" open question): rather than the
// original's trick of recording a synthetic assignment whose value node is
// the argument-type sample literal, a parameter's type is fixed directly
// here. internal/types consults DeclaredType before walking Assignments.
type ScopeEntry struct {
	DeclareToken token.Token
	Assignments  []Assignment
	DeclaredType interface{}
}

// HasBeenDeclaredBefore reports whether e's declaration precedes or is at
// tok's position.
func (e *ScopeEntry) HasBeenDeclaredBefore(tok token.Token) bool {
	return isBeforeOrAt(e.DeclareToken, tok)
}

// Scope maps identifier name to ScopeEntry. There is no parent pointer:
// the global scope and each function's scope are disjoint, per spec.md
// §4.4 ("a fresh scope that does not inherit").
type Scope struct {
	vars map[string]*ScopeEntry
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]*ScopeEntry)}
}

// Entry returns the scope entry for name, if declared.
func (s *Scope) Entry(name string) (*ScopeEntry, bool) {
	e, ok := s.vars[name]
	return e, ok
}

// Declare adds idNode's identifier to the scope, failing if it already
// exists (single-declaration invariant).
func (s *Scope) Declare(idNode *parsetree.Node) error {
	name := idNode.Attribute()
	tok := *idNode.Tok

	if _, exists := s.vars[name]; exists {
		return diag.New(diag.KindSemantic, tok.Line, tok.Col,
			fmt.Sprintf("redefinition of identifier %s", name), tok.SourceLine)
	}

	s.vars[name] = &ScopeEntry{DeclareToken: tok}
	return nil
}

// Use requires idNode's identifier to be declared at or before idNode's
// position.
func (s *Scope) Use(idNode *parsetree.Node) error {
	name := idNode.Attribute()
	tok := *idNode.Tok

	entry, ok := s.vars[name]
	if !ok || !entry.HasBeenDeclaredBefore(tok) {
		return diag.New(diag.KindSemantic, tok.Line, tok.Col,
			fmt.Sprintf("use of undeclared identifier %s", name), tok.SourceLine)
	}
	return nil
}

// Assign requires idNode's identifier to already be declared, then
// appends {idNode, valueNode} to its entry.
func (s *Scope) Assign(idNode, valueNode *parsetree.Node) error {
	if err := s.Use(idNode); err != nil {
		return err
	}
	name := idNode.Attribute()
	s.vars[name].Assignments = append(s.vars[name].Assignments, Assignment{IDNode: idNode, ValueNode: valueNode})
	return nil
}

// Analyse walks root (a "p" node), creating the global scope for the
// program's compound and a fresh scope for every function_definition.
func Analyse(root *parsetree.Node) error {
	global := NewScope()
	root.Scope = global

	for _, child := range root.Children {
		child.Scope = global
		if child.Symbol == "compound" {
			if err := analyse(child, global); err != nil {
				return err
			}
		}
	}
	return nil
}

func analyse(node *parsetree.Node, scope *Scope) error {
	node.Scope = scope

	switch {
	case node.Symbol == "function_definition":
		return analyseFuncDefinition(node)

	case node.Symbol == "v":
		return analyseVariableAssignment(node, scope, true)

	case node.Symbol == "a":
		return analyseVariableAssignment(node, scope, false)

	case node.Symbol == "pr" && node.HasChild("GET"):
		return analyseVariableAssignment(node, scope, false)

	case node.Symbol == string(token.ID):
		return scope.Use(node)

	default:
		for _, child := range node.Children {
			if err := analyse(child, scope); err != nil {
				return err
			}
		}
		return nil
	}
}

// analyseVariableAssignment handles "v" (declaration, optionally with an
// initialiser) and "a" (reassignment), and "pr" with a GET child (which
// behaves like a reassignment whose value is the GET terminal itself).
func analyseVariableAssignment(node *parsetree.Node, scope *Scope, isDeclaration bool) error {
	var idNode, assignNode *parsetree.Node

	for _, child := range node.Children {
		child.Scope = scope

		switch {
		case child.Symbol == string(token.ID):
			idNode = child
			if isDeclaration {
				if err := scope.Declare(idNode); err != nil {
					return err
				}
			}
		case child.Symbol == "var_assign" || child.Symbol == "expression" || child.Symbol == "GET":
			assignNode = child
		}
	}

	if assignNode == nil {
		return nil
	}

	if err := scope.Assign(idNode, assignNode); err != nil {
		return err
	}
	return analyse(assignNode, scope)
}

func analyseFuncDefinition(node *parsetree.Node) error {
	scope := NewScope()

	for _, child := range node.Children {
		child.Scope = scope

		switch child.Symbol {
		case "func_def_args":
			if err := analyseFuncArgs(child, scope); err != nil {
				return err
			}
		case "function_compound":
			if err := analyse(child, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

// analyseFuncArgs declares each parameter and fixes its type directly on
// the ScopeEntry (see ScopeEntry.DeclaredType), rather than recording a
// synthetic assignment.
func analyseFuncArgs(node *parsetree.Node, scope *Scope) error {
	if node.Children == nil {
		return nil
	}

	argType := node.Child("arg_type")
	idNode := node.Child(string(token.ID))
	if argType == nil || idNode == nil {
		return nil
	}

	argType.Scope = scope
	idNode.Scope = scope

	if err := scope.Declare(idNode); err != nil {
		return err
	}
	scope.vars[idNode.Attribute()].DeclaredType = argTypeOf(argType)

	if later := node.Child("later_func_def_arg"); later != nil {
		return analyseFuncArgs(later, scope)
	}
	return nil
}

// argTypeOf reads the sample-literal child of an arg_type node and returns
// the token class it was written with (NUMBER, STRING, TRUE or FALSE);
// internal/types maps this to a concrete Type.
func argTypeOf(argType *parsetree.Node) token.Class {
	if len(argType.Children) == 0 {
		return ""
	}
	return token.Class(argType.Children[0].Symbol)
}

func isBeforeOrAt(a, b token.Token) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Col <= b.Col)
}
