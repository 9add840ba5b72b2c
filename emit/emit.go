// Package emit turns an optimized ir.Grammar into a standalone Go source
// file of mutually recursive generator methods, one per reachable
// fragment, plus the G API surface described for the code emitter.
package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/dekarrin/fgrammar/ir"
	"github.com/dekarrin/rosed"
)

// Options controls the shape of the emitted file.
type Options struct {
	// Package is the package clause of the emitted file.
	Package string
	// TypeName is the name of the generated grammar type ("G" in spec
	// terms). Defaults to "Grammar" if empty.
	TypeName string
	// RuntimeImport is the import path of the genrt-compatible runtime the
	// emitted file imports. Defaults to "github.com/dekarrin/fgrammar/genrt".
	RuntimeImport string
	// DefaultMaxDepth is baked into the emitted file as a compile-time
	// constant (spec §4.4: "max_depth defaults to a compile-time constant
	// supplied by the caller, typical 128 or 256"). Every Generate*Into/New
	// method treats a non-positive maxDepth argument as "use the default"
	// rather than requiring the caller to always supply one. Defaults to
	// 256 if zero or negative.
	DefaultMaxDepth int
}

func (o Options) typeName() string {
	if o.TypeName == "" {
		return "Grammar"
	}
	return o.TypeName
}

func (o Options) runtimeImport() string {
	if o.RuntimeImport == "" {
		return "github.com/dekarrin/fgrammar/genrt"
	}
	return o.RuntimeImport
}

func (o Options) defaultMaxDepth() int {
	if o.DefaultMaxDepth <= 0 {
		return 256
	}
	return o.DefaultMaxDepth
}

// Emit renders g as a complete Go source file. g must already be optimized
// (package optimize) and SkipRecursionCheck populated; Emit performs no
// further simplification.
func Emit(g *ir.Grammar, opts Options) ([]byte, error) {
	if len(g.EntryPoints) == 0 {
		return nil, fmt.Errorf("emit: grammar has no entry points")
	}

	reachable := reachableSet(g)

	entryIdents := make([]string, len(g.EntryPoints))
	for i, ep := range g.EntryPoints {
		entryIdents[i] = ep.Name
	}
	sanitized := disambiguateNames(mapStrings(entryIdents, sanitizeEntryName))

	data := templateData{
		Package:         opts.Package,
		TypeName:        opts.typeName(),
		RuntimeImport:   opts.runtimeImport(),
		RuntimePkg:      runtimePackageIdent(opts.runtimeImport()),
		SafeOnly:        g.SafeOnly,
		IDMode:          g.OutputTerminalIDs,
		Terminals:       terminalLiterals(g),
		DefaultMaxDepth: opts.defaultMaxDepth(),
	}

	for i, ep := range g.EntryPoints {
		data.EntryPoints = append(data.EntryPoints, entryPointData{
			Suffix:     sanitized[i],
			FragmentID: int(ep.ID),
			Default:    i == 0,
		})
	}

	ids := make([]int, 0, len(reachable))
	for id := range reachable {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	for _, idInt := range ids {
		id := ir.FragmentID(idInt)
		f := g.Get(id)
		if f.Kind == ir.Unreachable {
			continue
		}
		fn, err := emitFragmentFunc(g, id, f, data.RuntimePkg, data.TypeName)
		if err != nil {
			return nil, err
		}
		data.Fragments = append(data.Fragments, fn)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit: rendering template: %w", err)
	}
	return buf.Bytes(), nil
}

// reachableSet recomputes reachability rather than trusting that every
// non-Unreachable slot in g.Fragments is actually wired from an entry
// point; a caller that skipped package optimize's sweep (e.g. passed a raw
// Construct() result straight to Emit) still gets a correct, minimal
// function set instead of emitting dead procedures.
func reachableSet(g *ir.Grammar) map[ir.FragmentID]bool {
	seen := make(map[ir.FragmentID]bool)
	var worklist []ir.FragmentID
	for _, ep := range g.EntryPoints {
		worklist = append(worklist, ep.ID)
	}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		f := g.Get(id)
		switch f.Kind {
		case ir.NonTerminal, ir.Expression:
			worklist = append(worklist, f.Children...)
		case ir.ScriptKind:
			worklist = append(worklist, f.Args...)
		}
	}
	return seen
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func terminalLiterals(g *ir.Grammar) []terminalData {
	out := make([]terminalData, len(g.Terminals))
	for i, t := range g.Terminals {
		out[i] = terminalData{
			Index:   i,
			GoBytes: byteSliceLiteral(t),
			Comment: terminalComment(t),
		}
	}
	return out
}

// terminalComment renders a best-effort UTF-8 comment for a terminal's
// bytes, matching the original emitter's "skip if it contains an asterisk"
// guard (an asterisk would risk prematurely closing a block comment if the
// literal were ever embedded in one). Each continuation line of a wrapped
// comment carries its own "//".
func terminalComment(data []byte) string {
	s := string(data)
	if !isValidUTF8Displayable(s) {
		return ""
	}
	for _, r := range s {
		if r == '*' {
			return ""
		}
	}
	wrapped := rosed.Edit(fmt.Sprintf("%q", s)).Wrap(76).String()
	return strings.ReplaceAll(wrapped, "\n", "\n\t// ")
}

func isValidUTF8Displayable(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}

func byteSliceLiteral(data []byte) string {
	var b bytes.Buffer
	b.WriteString("[]byte{")
	for i, c := range data {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%02x", c)
	}
	b.WriteString("}")
	return b.String()
}

func runtimePackageIdent(importPath string) string {
	// the runtime package is always named genrt regardless of import path,
	// matching the one bundled implementation; a caller supplying a
	// compatible alternative runtime is expected to keep that package name.
	return "genrt"
}

type templateData struct {
	Package         string
	TypeName        string
	RuntimeImport   string
	RuntimePkg      string
	SafeOnly        bool
	IDMode          bool
	Terminals       []terminalData
	EntryPoints     []entryPointData
	Fragments       []fragmentFunc
	DefaultMaxDepth int
}

type terminalData struct {
	Index   int
	GoBytes string
	Comment string
}

type entryPointData struct {
	Suffix     string
	FragmentID int
	Default    bool
}

type fragmentFunc struct {
	ID   int
	Body string
}

var fileTemplate = template.Must(template.New("emit").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`// Code generated by fgrammar. DO NOT EDIT.

package {{.Package}}

import (
	{{.RuntimePkg}} "{{.RuntimeImport}}"
)

// {{.TypeName}} is a generated grammar: each method below corresponds 1:1 to
// a reachable fragment of the grammar it was compiled from.
type {{.TypeName}} struct{}

// defaultMaxDepth{{.TypeName}} is the recursion bound a Generate*Into/New
// call falls back to when given a non-positive maxDepth.
const defaultMaxDepth{{.TypeName}} = {{.DefaultMaxDepth}}

func resolveMaxDepth{{.TypeName}}(maxDepth int) int {
	if maxDepth <= 0 {
		return defaultMaxDepth{{.TypeName}}
	}
	return maxDepth
}

var {{.TypeName | lower}}Terminals = [][]byte{
{{- range .Terminals}}
	{{.GoBytes}},{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
}

// Terminals returns the read-only terminal table backing this grammar.
func (g {{.TypeName}}) Terminals() [][]byte {
	return {{.TypeName | lower}}Terminals
}

// GetTerminal returns the i-th terminal's bytes.
func (g {{.TypeName}}) GetTerminal(i int) []byte {
	return {{.TypeName | lower}}Terminals[i]
}

{{$default := index .EntryPoints 0}}
// GenerateInto expands the default entry point ({{$default.Suffix}}) into
// buf. A non-positive maxDepth falls back to defaultMaxDepth{{.TypeName}}.
func (g {{.TypeName}}) GenerateInto(buf *{{.RuntimePkg}}.Buffer, maxDepth int, rng {{.RuntimePkg}}.Rng) {
	maxDepth = resolveMaxDepth{{.TypeName}}(maxDepth)
	g.fragment_{{$default.FragmentID}}(0, maxDepth, buf, rng)
}

// GenerateNew allocates a fresh buffer and expands the default entry point into it.
func (g {{.TypeName}}) GenerateNew(maxDepth int, rng {{.RuntimePkg}}.Rng) *{{.RuntimePkg}}.Buffer {
{{if .IDMode}}	buf := {{.RuntimePkg}}.NewIDBuffer()
{{else}}	buf := {{.RuntimePkg}}.NewBuffer()
{{end}}	g.GenerateInto(buf, maxDepth, rng)
	return buf
}

{{range .EntryPoints}}
// Generate{{.Suffix}}Into expands fragment {{.FragmentID}} into buf. A
// non-positive maxDepth falls back to defaultMaxDepth{{$.TypeName}}.
func (g {{$.TypeName}}) Generate{{.Suffix}}Into(buf *{{$.RuntimePkg}}.Buffer, maxDepth int, rng {{$.RuntimePkg}}.Rng) {
	maxDepth = resolveMaxDepth{{$.TypeName}}(maxDepth)
	g.fragment_{{.FragmentID}}(0, maxDepth, buf, rng)
}

// Generate{{.Suffix}}New allocates a fresh buffer and expands fragment {{.FragmentID}} into it.
func (g {{$.TypeName}}) Generate{{.Suffix}}New(maxDepth int, rng {{$.RuntimePkg}}.Rng) *{{$.RuntimePkg}}.Buffer {
{{if $.IDMode}}	buf := {{$.RuntimePkg}}.NewIDBuffer()
{{else}}	buf := {{$.RuntimePkg}}.NewBuffer()
{{end}}	g.Generate{{.Suffix}}Into(buf, maxDepth, rng)
	return buf
}
{{end}}

{{range .Fragments}}
{{.Body}}
{{end}}
`))
