// Package config loads oreoc's optional .oreocrc.toml, per SPEC_FULL.md
// §6.3: a small TOML file consulted for defaults the CLI flags can always
// override, tolerating a missing file the same way
// internal/tqw.ParseFileInfo tolerates a missing world file header.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Color is how the CLI decides whether to colour a diagnostic.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Options is the resolved set of ambient CLI defaults, before any flag
// override is applied.
type Options struct {
	Grammar  string `toml:"grammar"`
	Color    Color  `toml:"color"`
	CacheDir string `toml:"cache_dir"`
}

type fileShape struct {
	Oreoc Options `toml:"oreoc"`
}

// Defaults returns the built-in defaults used when no config file is found
// and no flag overrides them.
func Defaults() Options {
	return Options{Color: ColorAuto, CacheDir: ".oreoc-cache"}
}

// Load looks for .oreocrc.toml first in the current directory, then in
// $HOME, decoding whichever is found first over the built-in defaults. A
// missing file in both locations is not an error: Load just returns
// Defaults().
func Load() (Options, error) {
	opts := Defaults()

	path, ok := findConfigFile()
	if !ok {
		return opts, nil
	}

	var parsed fileShape
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return opts, err
	}

	if parsed.Oreoc.Grammar != "" {
		opts.Grammar = parsed.Oreoc.Grammar
	}
	if parsed.Oreoc.Color != "" {
		opts.Color = parsed.Oreoc.Color
	}
	if parsed.Oreoc.CacheDir != "" {
		opts.CacheDir = parsed.Oreoc.CacheDir
	}
	return opts, nil
}

func findConfigFile() (string, bool) {
	if _, err := os.Stat(".oreocrc.toml"); err == nil {
		return ".oreocrc.toml", true
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, ".oreocrc.toml")
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}

// ResolveColor decides whether diagnostics should be coloured, given the
// config/flag value and whether stdout is a terminal.
func ResolveColor(c Color, stdoutIsTTY bool) bool {
	switch c {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return stdoutIsTTY
	}
}
