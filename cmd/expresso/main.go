// Command expresso is a thin driver over the front end: it resolves a
// source file's imports, runs type inference, and prints the principal
// scheme or a positioned diagnostic. It is explicitly outside the core
// (spec.md §6: "no command-line interface ... is part of the core") —
// every complete Go repo needs an entry point, and this is it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/5l1v3r1/Expresso/internal/config"
	"github.com/5l1v3r1/Expresso/internal/infer"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

const (
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: expresso <source-file> [libDir ...]")
		os.Exit(2)
	}
	file := os.Args[1]
	libDirs := os.Args[2:]

	cfgPath := filepath.Join(filepath.Dir(file), "expresso.yaml")
	cfg, err := config.LoadSearchConfig(cfgPath)
	if err != nil {
		fail(err)
	}
	libDirs = append(libDirs, cfg.LibDirs...)

	scheme, err := infer.InferFile(libDirs, file, typesystem.TypeEnv{})
	if err != nil {
		fail(err)
	}
	if cfg.Strict {
		if err := checkNoUnresolvedWildcards(scheme); err != nil {
			fail(err)
		}
	}
	printSuccess(scheme)
}

// checkNoUnresolvedWildcards rejects a principal scheme that still
// quantifies over a surface `_` annotation wildcard. A wildcard that
// never got pinned down to a concrete type is indistinguishable from an
// ordinary polymorphic variable once generalised, so by default it is
// accepted like any other free variable; expresso.yaml's `strict: true`
// asks for the stricter reading where every `_` must resolve to
// something concrete.
func checkNoUnresolvedWildcards(scheme typesystem.Scheme) error {
	for _, v := range scheme.Vars {
		if v.Flavour == typesystem.Wildcard {
			return fmt.Errorf("strict mode: wildcard %s at %s never resolved to a concrete type", v.Prefix, v.SrcPos)
		}
	}
	return nil
}

// useColor decides whether diagnostics should be colorized, the same
// isatty/NO_COLOR check the teacher's own terminal builtins perform
// before writing ANSI escapes to stdout.
func useColor(f *os.File) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printSuccess(scheme typesystem.Scheme) {
	if useColor(os.Stdout) {
		fmt.Printf("%s%s%s\n", colorGreen, scheme.String(), colorReset)
		return
	}
	fmt.Println(scheme.String())
}

func fail(err error) {
	if useColor(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", colorRed, err.Error(), colorReset)
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(1)
}
