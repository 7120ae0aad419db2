/*
Oreoc-repl is an interactive Oreo session: it reads one statement at a time
from the terminal, compiles it on its own (lex, parse, semantic analysis,
type checking, TAC emission), and prints the resulting TAC, per
SPEC_FULL.md §6.2. A statement that fails any stage reports its diagnostic
and the session continues — one bad line never ends the session.

Usage:

	oreoc-repl [flags]

The flags are:

	-v, --version
		Print the current version and exit.

	-g, --grammar PATH
		Load the grammar from PATH instead of the built-in Oreo grammar.

	--color auto|always|never
		Whether diagnostics use ANSI colour.

Each line (or block, for IF/WHILE/PROCEDURE...END) is its own compilation
unit: declarations, scopes and TAC temporaries do not carry over between
statements, matching oreoc.Unit's stateless-per-compile design.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/oreo-lang/oreoc/internal/config"
	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/lexer"
	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/replio"
	"github.com/oreo-lang/oreoc/internal/semantic"
	"github.com/oreo-lang/oreoc/internal/syntax"
	"github.com/oreo-lang/oreoc/internal/tac"
	"github.com/oreo-lang/oreoc/internal/types"
	"github.com/oreo-lang/oreoc/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates a problem resolving configuration or grammar.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Print the current version and exit")
	grammarPath = pflag.StringP("grammar", "g", "", "Load the grammar from this path instead of the built-in grammar")
	flagColor   = pflag.String("color", "", "Whether to colour diagnostics: auto, always, or never")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("oreoc-repl %s\n", version.Current)
		return
	}

	opts, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}
	if *flagColor != "" {
		opts.Color = config.Color(*flagColor)
	}
	if *grammarPath != "" {
		opts.Grammar = *grammarPath
	}
	color := config.ResolveColor(opts.Color, isatty.IsTerminal(os.Stdout.Fd()))

	table, err := loadGrammar(opts.Grammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}

	reader, err := replio.NewReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}
	defer reader.Close()

	parser := syntax.New(table)

	for {
		source, err := reader.ReadStatement()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			returnCode = ExitInitError
			return
		}
		if strings.TrimSpace(source) == "" {
			continue
		}

		runID := uuid.New().String()
		if err := compileStatement(parser, source); err != nil {
			reportError(runID, err, color)
		}
	}
}

// compileStatement runs one statement through the full pipeline and prints
// its TAC. Each call is an independent compilation: no scope, declaration,
// or temporary/label counter state survives across statements.
func compileStatement(parser *syntax.Parser, source string) error {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return err
	}

	stmt, err := parser.ParseSymbol("statement", tokens)
	if err != nil {
		return err
	}

	// The later stages start from a program's "compound", so the statement
	// is placed under a p -> compound pair first.
	tree := parsetree.NewNonTerminal("p")
	compound := tree.AddChild(parsetree.NewNonTerminal("compound"))
	stmt.Walk(func(n *parsetree.Node) { n.Level += 2 })
	stmt.Parent = compound
	compound.Children = []*parsetree.Node{stmt}

	if err := semantic.Analyse(tree); err != nil {
		return err
	}
	if err := types.Check(tree); err != nil {
		return err
	}

	program, err := tac.Emit(tree)
	if err != nil {
		return err
	}

	fmt.Print(program.String())
	return nil
}

func loadGrammar(path string) (grammar.RuleTable, error) {
	if path == "" {
		return grammar.Default()
	}
	lines, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return grammar.Load(strings.Split(string(lines), "\n"))
}

func reportError(runID string, err error, color bool) {
	if de, ok := err.(*diag.Error); ok {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", runID, de.FullMessage(color))
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", runID, err)
}
