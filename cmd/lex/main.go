/*
Oreoc-lex prints the token stream produced by lexing a single Oreo source
file, one token per line, per spec.md §6.2.

Usage:

	oreoc-lex [flags] <file>

The flags are:

	-v, --version
		Print the current version and exit.

	--emit-cache
		Additionally serialise the token stream to a binary snapshot under
		--cache-dir, printing the generated file name.

	--cache-dir DIR
		Where --emit-cache writes its snapshot. Defaults to the resolved
		config's cache_dir (see .oreocrc.toml), itself defaulting to
		".oreoc-cache".

	--color auto|always|never
		Whether diagnostics use ANSI colour. Defaults to the resolved
		config's color, itself defaulting to "auto" (colour iff stdout is a
		terminal).
*/
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/oreo-lang/oreoc/internal/cache"
	"github.com/oreo-lang/oreoc/internal/config"
	"github.com/oreo-lang/oreoc/internal/diag"
	"github.com/oreo-lang/oreoc/internal/lexer"
	"github.com/oreo-lang/oreoc/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad flags or arguments.
	ExitUsageError

	// ExitLexError indicates the source file failed to lex.
	ExitLexError

	// ExitInitError indicates a problem resolving configuration.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagColor   = pflag.String("color", "", "Whether to colour diagnostics: auto, always, or never")
	emitCache   = pflag.Bool("emit-cache", false, "Serialise the token stream to a binary snapshot")
	cacheDir    = pflag.String("cache-dir", "", "Directory --emit-cache writes its snapshot into")
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
		fmt.Printf("oreoc-lex %s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: oreoc-lex [flags] <file>")
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
	if *cacheDir != "" {
		opts.CacheDir = *cacheDir
	}
	color := config.ResolveColor(opts.Color, isatty.IsTerminal(os.Stdout.Fd()))

	path := pflag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}

	runID := uuid.New().String()

	tokens, lexErr := lexer.Lex(string(source))
	if lexErr != nil {
		if de, ok := lexErr.(*diag.Error); ok {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", runID, de.FullMessage(color))
		} else {
			fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", runID, lexErr)
		}
		returnCode = ExitLexError
		return
	}

	for _, tok := range tokens {
		fmt.Println(tok.String())
	}

	if *emitCache {
		cachePath, err := cache.SaveTokens(opts.CacheDir, runID, tokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", runID, err)
			returnCode = ExitInitError
			return
		}
		fmt.Printf("[%s] wrote %s\n", runID, cachePath)
	}
}
