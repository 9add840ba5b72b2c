// Package builtin lazily constructs the five bundled sub-grammars (string,
// numbers, url, json, http) and splices them into a host grammar under a
// namespaced "<!module.name>" prefix.
//
// Construction of each sub-grammar happens at most once per process, behind
// a sync.Once barrier, matching the spec's "thread-safe and memoized
// process-wide" requirement; sub-grammars are read-only afterward and
// extend_and_rename only ever copies out of them.
package builtin

import (
	_ "embed"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/ir"
)

//go:embed grammars/string.json
var stringGrammarJSON []byte

//go:embed grammars/numbers.json
var numbersGrammarJSON []byte

//go:embed grammars/url.json
var urlGrammarJSON []byte

//go:embed grammars/json.json
var jsonGrammarJSON []byte

//go:embed grammars/http.json
var httpGrammarJSON []byte

var modules = map[string][]byte{
	"string":  stringGrammarJSON,
	"numbers": numbersGrammarJSON,
	"url":     urlGrammarJSON,
	"json":    jsonGrammarJSON,
	"http":    httpGrammarJSON,
}

type cached struct {
	once    sync.Once
	grammar *ir.Grammar
	err     error
}

var cache = map[string]*cached{
	"string":  {},
	"numbers": {},
	"url":     {},
	"json":    {},
	"http":    {},
}

var cacheMu sync.Mutex

// loaderImpl implements builder.BuiltinLoader.
type loaderImpl struct{}

// Loader is the process-wide BuiltinLoader implementation. It is exported
// so callers can wire it into builder.Builder via SetBuiltinLoader.
var Loader builder.BuiltinLoader = loaderImpl{}

// Warmup constructs each named module's sub-grammar up front, so the first
// real "<!module.rule>" reference in a request doesn't pay the builder cost.
// Unknown module names are reported but do not stop warmup of the rest.
func Warmup(moduleNames []string) error {
	var firstErr error
	for _, name := range moduleNames {
		if _, err := load(name); err != nil {
			log.Printf("builtin: warmup %q failed: %s", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Load resolves a "<!module.rule>" reference: it builds (or reuses the
// cached build of) the requested module's sub-grammar, then splices it into
// host, returning the FragmentID that corresponds to rule within host.
func (loaderImpl) Load(host *ir.Grammar, module, rule string) (ir.FragmentID, error) {
	sub, err := load(module)
	if err != nil {
		return 0, err
	}
	target := "<" + rule + ">"
	prefix := "<!" + module + "."
	return extendAndRename(host, sub, prefix, target)
}

// load returns the constructed (unoptimized) sub-grammar for module,
// building it on first use.
func load(module string) (*ir.Grammar, error) {
	cacheMu.Lock()
	entry, known := cache[module]
	cacheMu.Unlock()
	if !known {
		return nil, &UnknownModuleError{Module: module}
	}

	entry.once.Do(func() {
		log.Printf("builtin: constructing sub-grammar %q", module)
		doc, err := builder.ParseJSONGrammar(modules[module])
		if err != nil {
			entry.err = fmt.Errorf("builtin: %q: %w", module, err)
			return
		}
		names := make([]string, 0, len(doc))
		for name := range doc {
			names = append(names, name)
		}
		sort.Strings(names)
		var start string
		if len(names) > 0 {
			start = names[0]
		}
		b, err := builder.FromJSONGrammar(doc, start)
		if err != nil {
			entry.err = fmt.Errorf("builtin: %q: %w", module, err)
			return
		}
		b.SetBuiltinLoader(Loader)
		g, err := b.Construct()
		if err != nil {
			entry.err = fmt.Errorf("builtin: %q: %w", module, err)
			return
		}
		entry.grammar = g
	})

	return entry.grammar, entry.err
}

// extendAndRename implements spec §4.2: it appends sub's terminals and
// fragments (remapped by a fixed offset) into host, renames every name in
// sub.NameToFragment by replacing a leading "<" with prefix (builtin names,
// which already begin with "<!", pass through unrenamed), and returns the
// fragment id for searchFor (matched either before or after renaming).
func extendAndRename(host, sub *ir.Grammar, prefix, searchFor string) (ir.FragmentID, error) {
	off := ir.FragmentID(len(host.Fragments))
	tidOff := len(host.Terminals)

	for _, t := range sub.Terminals {
		cp := append([]byte(nil), t...)
		host.Terminals = append(host.Terminals, cp)
	}

	for _, f := range sub.Fragments {
		nf := f.Clone()
		switch nf.Kind {
		case ir.NonTerminal, ir.Expression:
			for i := range nf.Children {
				nf.Children[i] += off
			}
		case ir.TerminalKind:
			nf.Terminal += tidOff
		case ir.ScriptKind:
			for i := range nf.Args {
				nf.Args[i] += off
			}
		}
		host.Fragments = append(host.Fragments, nf)
	}

	var found ir.FragmentID
	foundOK := false
	for name, id := range sub.NameToFragment {
		renamed := name
		if len(name) < 2 || name[:2] != "<!" {
			renamed = prefix + name[1:]
		}
		newID := id + off

		if name == searchFor || renamed == searchFor {
			found = newID
			foundOK = true
		}

		host.NameToFragment[renamed] = newID
	}

	if !foundOK {
		return 0, &UnknownRuleError{Prefix: prefix, Target: searchFor}
	}
	return found, nil
}
