// Package builder accepts grammar rules from a JSON document or a
// programmatic API and lowers them into the flat ir.Grammar IR, resolving
// identifiers and interning terminals as it goes.
package builder

import (
	"github.com/dekarrin/fgrammar/ir"
)

// Ident is one token of a rule alternative: a literal byte string, a
// reference to another rule in the same grammar, or a reference into a
// builtin module.
type Ident struct {
	kind   identKind
	data   []byte
	name   string
	module string
}

type identKind int

const (
	identData identKind = iota
	identRule
	identModule
)

// Data returns an Ident for literal terminal bytes.
func Data(b []byte) Ident { return Ident{kind: identData, data: b} }

// Rule returns an Ident referencing another rule by name.
func Rule(name string) Ident { return Ident{kind: identRule, name: name} }

// ModuleRule returns an Ident referencing rule within a builtin module.
func ModuleRule(module, rule string) Ident {
	return Ident{kind: identModule, module: module, name: rule}
}

// rule is one named production in a grammar under construction: either a
// set of alternatives (ProdRule) or a single script hook (ScriptRule).
type rule struct {
	isScript  bool
	duplicate bool // a second script rule was added under this name

	// ProdRule: each element is one alternative, itself a sequence of
	// Idents concatenated in order.
	alternatives [][]Ident

	// ScriptRule.
	code     string
	argNames []string
}

// BuiltinLoader resolves a "<!module.rule>" reference against a library of
// well-known sub-grammars, splicing the resolved rule (and everything it
// depends on) into host and returning the fragment id to use in its place.
//
// Package builtin implements this interface; builder depends only on the
// interface to avoid an import cycle (builtin's own embedded grammars are
// parsed using this package).
type BuiltinLoader interface {
	Load(host *ir.Grammar, module, rule string) (ir.FragmentID, error)
}

// Builder incrementally accumulates named rules and entry points before
// lowering them into an ir.Grammar with Construct or Build.
type Builder struct {
	rules       map[string]*rule
	ruleOrder   []string
	entrypoints []string
	loader      BuiltinLoader
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{rules: make(map[string]*rule)}
}

// SetBuiltinLoader installs the resolver used for "<!module.rule>"
// references. A Builder with no loader fails with UnresolvedReferenceError
// on any such reference.
func (b *Builder) SetBuiltinLoader(loader BuiltinLoader) *Builder {
	b.loader = loader
	return b
}

func (b *Builder) prodRule(name string) *rule {
	r, ok := b.rules[name]
	if !ok {
		r = &rule{}
		b.rules[name] = r
		b.ruleOrder = append(b.ruleOrder, name)
	}
	return r
}

// AddTerminal adds a rule (or appends to an existing one) producing a
// single literal terminal.
//
//	A -> 'a'
func (b *Builder) AddTerminal(name string, data []byte) *Builder {
	r := b.prodRule(name)
	r.alternatives = append(r.alternatives, []Ident{Data(data)})
	return b
}

// WithTerminal is the fluent form of AddTerminal.
func (b *Builder) WithTerminal(name string, data []byte) *Builder {
	return b.AddTerminal(name, data)
}

// AddTerminals adds a rule (or appends) with one alternative per element of
// data.
//
//	A -> 'a' | 'b' | 'c'
func (b *Builder) AddTerminals(name string, data [][]byte) *Builder {
	r := b.prodRule(name)
	for _, d := range data {
		r.alternatives = append(r.alternatives, []Ident{Data(d)})
	}
	return b
}

// WithTerminals is the fluent form of AddTerminals.
func (b *Builder) WithTerminals(name string, data [][]byte) *Builder {
	return b.AddTerminals(name, data)
}

// AddExpression adds a rule (or appends) consisting of other rules
// expanded in order.
//
//	A -> B C D
func (b *Builder) AddExpression(name string, refs []string) *Builder {
	r := b.prodRule(name)
	idents := make([]Ident, len(refs))
	for i, ref := range refs {
		idents[i] = Rule(ref)
	}
	r.alternatives = append(r.alternatives, idents)
	return b
}

// WithExpression is the fluent form of AddExpression.
func (b *Builder) WithExpression(name string, refs []string) *Builder {
	return b.AddExpression(name, refs)
}

// AddRule adds a rule (or appends) with one alternative built from an
// arbitrary mix of Idents.
//
//	A -> B 'term' C
func (b *Builder) AddRule(name string, alt []Ident) *Builder {
	r := b.prodRule(name)
	r.alternatives = append(r.alternatives, append([]Ident(nil), alt...))
	return b
}

// WithRule is the fluent form of AddRule.
func (b *Builder) WithRule(name string, alt []Ident) *Builder {
	return b.AddRule(name, alt)
}

// AddGenerator adds a script rule with no arguments: code is invoked
// directly with the output buffer and RNG. It is an error to add a
// generator or script under a name that already has a rule.
func (b *Builder) AddGenerator(name, code string) *Builder {
	return b.AddScript(name, code, nil)
}

// WithGenerator is the fluent form of AddGenerator.
func (b *Builder) WithGenerator(name, code string) *Builder {
	return b.AddGenerator(name, code)
}

// AddScript adds a script rule whose code is invoked with each named arg
// expanded into its own scratch buffer first. It is an error to add a
// script under a name that already has a rule (including a prior script).
func (b *Builder) AddScript(name, code string, argNames []string) *Builder {
	if _, exists := b.rules[name]; exists {
		// Recorded as an error at Construct time via DuplicateRuleError so
		// Builder methods stay panic-free and chainable; construct()
		// validates this map for exactly one script entry per name.
		b.rules[name] = &rule{isScript: true, code: code, argNames: argNames, duplicate: true}
		return b
	}
	b.rules[name] = &rule{isScript: true, code: code, argNames: argNames}
	b.ruleOrder = append(b.ruleOrder, name)
	return b
}

// WithScript is the fluent form of AddScript.
func (b *Builder) WithScript(name, code string, argNames []string) *Builder {
	return b.AddScript(name, code, argNames)
}

// AddEntrypoint marks name as a rule from which generation may start. The
// first entry point added across the Builder's lifetime is the default.
func (b *Builder) AddEntrypoint(name string) *Builder {
	b.entrypoints = append(b.entrypoints, name)
	return b
}

// WithEntrypoint is the fluent form of AddEntrypoint.
func (b *Builder) WithEntrypoint(name string) *Builder {
	return b.AddEntrypoint(name)
}

