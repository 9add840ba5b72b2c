/*
Fgrammarc compiles a grammar document into a standalone Go source file that
generates random strings belonging to the language the grammar describes.

Usage:

	fgrammarc [flags] <grammar.json> <output-file> [max_depth]

The flags are:

	-v, --version
		Give the current version of fgrammarc and then exit.

	-c, --config FILE
		Load driver settings (default max depth, builtin warmup list) from
		the given TOML file.

	-p, --package NAME
		Package clause to use in the emitted source file. Defaults to
		"generated".

	-t, --type NAME
		Name of the emitted grammar type. Defaults to "Grammar".

	--safe-only
		Disable the unchecked bulk-copy fast path for multi-byte terminal
		writes in the emitted generator.

	--ids
		Emit a token-id output stream instead of raw terminal bytes.

	--repl
		After loading and building grammar.json, open an interactive
		preview session instead of writing output-file.

If the argument count is wrong, a warning is printed and the program exits
0 rather than failing, matching the behavior of the original cli tool this
was adapted from.
*/
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/builtin"
	"github.com/dekarrin/fgrammar/emit"
	"github.com/dekarrin/fgrammar/internal/config"
	"github.com/dekarrin/fgrammar/internal/repl"
	"github.com/dekarrin/fgrammar/internal/version"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/dekarrin/fgrammar/optimize"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution, or a usage
	// warning that the original tool treats as non-fatal.
	ExitSuccess = iota

	// ExitLoadError indicates failure to read or parse the grammar file.
	ExitLoadError

	// ExitBuildError indicates failure during build/optimize.
	ExitBuildError

	// ExitWriteError indicates failure to write the emitted source file.
	ExitWriteError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of fgrammarc and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load driver settings from the given TOML file.")
	flagPackage = pflag.StringP("package", "p", "generated", "Package clause to use in the emitted source file.")
	flagType    = pflag.StringP("type", "t", "Grammar", "Name of the emitted grammar type.")
	flagSafe    = pflag.Bool("safe-only", false, "Disable the unchecked bulk-copy fast path for terminal writes.")
	flagIDs     = pflag.Bool("ids", false, "Emit a token-id output stream instead of raw bytes.")
	flagRepl    = pflag.Bool("repl", false, "Open an interactive preview session instead of writing output.")
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
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitLoadError
		return
	}
	if len(cfg.WarmupModules) > 0 {
		if err := builtin.Warmup(cfg.WarmupModules); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: builtin warmup: %s\n", err.Error())
		}
	}

	args := pflag.Args()
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintf(os.Stderr, "WARNING: expected <grammar.json> <output-file> [max_depth], got %d argument(s); doing nothing\n", len(args))
		return
	}

	grammarPath := args[0]
	outputPath := args[1]
	maxDepth := cfg.MaxDepth
	if len(args) == 3 {
		var n int
		if _, scanErr := fmt.Sscanf(args[2], "%d", &n); scanErr != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "WARNING: invalid max_depth %q, using default %d\n", args[2], maxDepth)
		} else {
			maxDepth = n
		}
	}

	doc, err := os.ReadFile(grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", grammarPath, err.Error())
		returnCode = ExitLoadError
		return
	}

	buildID := uuid.NewString()
	fmt.Fprintf(os.Stderr, "INFO: [build %s] compiling %s\n", buildID, grammarPath)

	g, err := buildGrammar(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: [build %s] %s\n", buildID, err.Error())
		returnCode = ExitBuildError
		return
	}

	if *flagRepl {
		if err := repl.Run(g, maxDepth, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: repl: %s\n", err.Error())
			returnCode = ExitBuildError
		}
		return
	}

	g.SafeOnly = *flagSafe
	g.OutputTerminalIDs = *flagIDs

	src, err := emit.Emit(g, emit.Options{Package: *flagPackage, TypeName: *flagType, DefaultMaxDepth: maxDepth})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: [build %s] emitting: %s\n", buildID, err.Error())
		returnCode = ExitBuildError
		return
	}

	if err := os.WriteFile(outputPath, src, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: [build %s] writing %s: %s\n", buildID, outputPath, err.Error())
		returnCode = ExitWriteError
		return
	}

	fmt.Fprintf(os.Stderr, "INFO: [build %s] wrote %s\n", buildID, outputPath)
}

func buildGrammar(doc []byte) (*ir.Grammar, error) {
	parsed, err := builder.ParseJSONGrammar(doc)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parsed))
	for name := range parsed {
		names = append(names, name)
	}
	sort.Strings(names)
	var start string
	if len(names) > 0 {
		start = names[0]
	}

	b, err := builder.FromJSONGrammar(parsed, start)
	if err != nil {
		return nil, err
	}
	b.SetBuiltinLoader(builtin.Loader)

	g, err := optimize.Build(b)
	if err != nil {
		return nil, err
	}
	return g, nil
}
