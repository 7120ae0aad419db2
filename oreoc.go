// Package oreoc wires together the compiler front-end's pipeline stages:
// lexer, grammar-driven syntax analyser, semantic analyser, type checker
// and TAC emitter, in the order spec.md §2 lays out. Each *Unit value is
// one compilation: it owns no package-level state, so two Units can run
// concurrently (SPEC_FULL.md §5) without sharing the monotonic temporary
// and label counters internal/tac resets per compilation.
package oreoc

import (
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/lexer"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/semantic"
	"github.com/oreo-lang/oreoc/internal/syntax"
	"github.com/oreo-lang/oreoc/internal/tac"
	"github.com/oreo-lang/oreoc/internal/token"
	"github.com/oreo-lang/oreoc/internal/types"
)

// Unit is one compilation: a grammar to parse against, paired with whatever
// source text is handed to its methods. The zero value is not usable;
// construct with New.
type Unit struct {
	Grammar grammar.RuleTable
}

// New returns a Unit that parses against table (internal/grammar.Default()
// for the built-in Oreo grammar, or a table loaded from a custom file).
func New(table grammar.RuleTable) *Unit {
	return &Unit{Grammar: table}
}

// Lex runs only the lexer stage.
func (u *Unit) Lex(source string) ([]token.Token, error) {
	return lexer.Lex(source)
}

// ParseTree runs the lexer and syntax analyser, returning the raw parse
// tree with no scope/type annotation.
func (u *Unit) ParseTree(source string) (*parsetree.Node, error) {
	tokens, err := u.Lex(source)
	if err != nil {
		return nil, err
	}
	return syntax.New(u.Grammar).Parse(tokens)
}

// Result is everything produced by a full Compile: the annotated parse
// tree and its lowered TAC program.
type Result struct {
	Tree    *parsetree.Node
	Program *tac.Program
}

// Compile runs the complete pipeline: lex, parse, scope/declare-before-use
// analysis, type checking, then TAC emission. It stops and returns the
// first *diag.Error from any stage (spec.md §7: no recovery past the first
// error). Tree is non-nil whenever parsing succeeded, even if a later
// stage failed, so callers can still print the tree alongside the error.
func (u *Unit) Compile(source string) (Result, error) {
	tree, err := u.ParseTree(source)
	if err != nil {
		return Result{}, err
	}

	if err := semantic.Analyse(tree); err != nil {
		return Result{Tree: tree}, err
	}

	if err := types.Check(tree); err != nil {
		return Result{Tree: tree}, err
	}

	program, err := tac.Emit(tree)
	if err != nil {
		return Result{Tree: tree}, err
	}

	return Result{Tree: tree, Program: program}, nil
}
