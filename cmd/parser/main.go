/*
Oreoc-parser parses a single Oreo source file and prints its parse tree, per
spec.md §6.2. With --tac, it instead runs the complete pipeline (lex, parse,
semantic analysis, type checking, TAC emission) and prints the resulting TAC
listing.

Usage:

	oreoc-parser [flags] <file>

The flags are:

	-v, --version
		Print the current version and exit.

	-g, --grammar PATH
		Load the grammar from PATH instead of the built-in Oreo grammar.

	--tac
		Run the full pipeline and print TAC instead of the parse tree.

	--emit-cache
		Serialise the parse result (the parse tree dump, or the TAC listing
		when --tac is given) to a binary snapshot under --cache-dir, printing
		the file name.

	--cache-dir DIR
		Where --emit-cache writes its snapshot.

	--color auto|always|never
		Whether diagnostics use ANSI colour.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/oreo-lang/oreoc"
	"github.com/oreo-lang/oreoc/internal/cache"
	"github.com/oreo-lang/oreoc/internal/config"
	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/grammar"
	"github.com/oreo-lang/oreoc/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad flags or arguments.
	ExitUsageError

	// ExitCompileError indicates the source file failed some pipeline stage.
	ExitCompileError

	// ExitInitError indicates a problem resolving configuration or grammar.
	ExitInitError
)

var (
	returnCode   = ExitSuccess
	flagVersion  = pflag.BoolP("version", "v", false, "Print the current version and exit")
	grammarPath  = pflag.StringP("grammar", "g", "", "Load the grammar from this path instead of the built-in grammar")
	runTAC       = pflag.Bool("tac", false, "Run the full pipeline and print TAC instead of the parse tree")
	flagColor    = pflag.String("color", "", "Whether to colour diagnostics: auto, always, or never")
	emitCache    = pflag.Bool("emit-cache", false, "Serialise the result to a binary snapshot")
	cacheDirFlag = pflag.String("cache-dir", "", "Directory --emit-cache writes its snapshot into")
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
		fmt.Printf("oreoc-parser %s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: oreoc-parser [flags] <file>")
		returnCode = ExitUsageError
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
	if *cacheDirFlag != "" {
		opts.CacheDir = *cacheDirFlag
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

	source, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}

	runID := uuid.New().String()
	unit := oreoc.New(table)

	if !*runTAC {
		tree, err := unit.ParseTree(string(source))
		if err != nil {
			reportError(runID, err, color)
			returnCode = ExitCompileError
			return
		}
		fmt.Print(tree.String())
		if *emitCache {
			writeListingCache(runID, opts.CacheDir, "tree", tree.String())
		}
		return
	}

	result, err := unit.Compile(string(source))
	if err != nil {
		reportError(runID, err, color)
		returnCode = ExitCompileError
		return
	}
	fmt.Print(result.Program.String())

	if *emitCache {
		writeListingCache(runID, opts.CacheDir, "tac", result.Program.String())
	}
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

func writeListingCache(runID, dir, tag, rendered string) {
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	path, err := cache.SaveLines(dir, runID, tag, lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", runID, err)
		return
	}
	fmt.Printf("[%s] wrote %s\n", runID, path)
}
