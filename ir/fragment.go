// Package ir defines the flat, indexed grammar intermediate representation
// that the builder produces, the optimizer simplifies, and the emitter
// turns into generator code.
//
// The grammar is naturally cyclic (recursive rules refer back to
// themselves), so it is represented as a single append-only slice of
// Fragments addressed by FragmentID rather than as a tree of pointers.
// Cloning a fragment is a value copy; there are no back-pointers, and
// reverse reachability is always computed on demand with a worklist.
package ir

import "fmt"

// FragmentID addresses a Fragment within a Grammar's fragment table. IDs
// are insertion order and never alias: two distinct allocations never
// produce the same ID within one Grammar.
type FragmentID int

// Kind identifies which variant of Fragment a value holds.
type Kind int

const (
	// NonTerminal is a choice point: uniform random selection over Children.
	NonTerminal Kind = iota
	// Expression is a concatenation point: Children are emitted in order.
	Expression
	// TerminalKind emits the byte string Terminals[Terminal].
	TerminalKind
	// ScriptKind calls user-supplied generator code identified by Code.
	ScriptKind
	// Nop emits nothing.
	Nop
	// Unreachable is a sentinel for fragment slots proven unreachable from
	// any entry point. It must never be executed.
	Unreachable
)

func (k Kind) String() string {
	switch k {
	case NonTerminal:
		return "NonTerminal"
	case Expression:
		return "Expression"
	case TerminalKind:
		return "Terminal"
	case ScriptKind:
		return "Script"
	case Nop:
		return "Nop"
	case Unreachable:
		return "Unreachable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fragment is a single node of the grammar IR. Exactly the fields that
// correspond to Kind are meaningful; the rest are zero-valued.
type Fragment struct {
	Kind Kind

	// Children holds sub-fragment IDs for NonTerminal (alternatives) and
	// Expression (sequence, in order).
	Children []FragmentID

	// Terminal is the index into a Grammar's terminal table, valid when
	// Kind == TerminalKind.
	Terminal int

	// Args holds the argument fragments for ScriptKind; each is expanded
	// into its own scratch buffer before Code is invoked. Empty Args means
	// Code is a generator called directly with the output buffer.
	Args []FragmentID
	// Code is an opaque reference to target-language generator code. The
	// core never interprets it; the emitter inlines it as a callable
	// identifier.
	Code string
}

// NonTerm returns a NonTerminal fragment choosing among children.
func NonTerm(children ...FragmentID) Fragment {
	return Fragment{Kind: NonTerminal, Children: children}
}

// Expr returns an Expression fragment concatenating children in order.
func Expr(children ...FragmentID) Fragment {
	return Fragment{Kind: Expression, Children: children}
}

// Term returns a Terminal fragment referencing terminal table index t.
func Term(t int) Fragment {
	return Fragment{Kind: TerminalKind, Terminal: t}
}

// Script returns a Script fragment invoking code with the given argument
// fragments.
func Script(code string, args ...FragmentID) Fragment {
	return Fragment{Kind: ScriptKind, Code: code, Args: args}
}

// EntryPoint is a named fragment from which generation may start. The
// first EntryPoint in a Grammar is the default start rule.
type EntryPoint struct {
	Name string
	ID   FragmentID
}

// Grammar is the complete, flat grammar IR: an indexed fragment table, an
// interned terminal table, named entry points, and emitter policy flags.
//
// The zero value has nil NameToFragment and SkipRecursionCheck maps, so
// builtin loading and recursion analysis cannot write into it; use New for
// a Grammar to build into.
type Grammar struct {
	Fragments []Fragment
	Terminals [][]byte

	EntryPoints []EntryPoint

	// NameToFragment maps rule name to FragmentID. Builtin-loaded rules
	// carry a "<!module.name>" prefix to avoid colliding with the host
	// grammar's own rule names.
	NameToFragment map[string]FragmentID

	// SkipRecursionCheck holds fragments proven trivially non-recursive by
	// the two-pass analysis in package optimize.
	SkipRecursionCheck map[FragmentID]bool

	// SafeOnly disables the unchecked bulk-copy append path in emitted
	// terminal writes.
	SafeOnly bool
	// OutputTerminalIDs switches emission to a token-id output stream
	// instead of raw terminal bytes.
	OutputTerminalIDs bool
}

// New returns an empty, ready-to-build Grammar.
func New() *Grammar {
	return &Grammar{
		NameToFragment:     make(map[string]FragmentID),
		SkipRecursionCheck: make(map[FragmentID]bool),
	}
}

// Allocate appends f to the fragment table and returns its new ID.
func (g *Grammar) Allocate(f Fragment) FragmentID {
	id := FragmentID(len(g.Fragments))
	g.Fragments = append(g.Fragments, f)
	return id
}

// Get returns the fragment at id. It panics on an out-of-bounds id, which
// indicates a builder or optimizer bug rather than a recoverable runtime
// condition.
func (g *Grammar) Get(id FragmentID) Fragment {
	return g.Fragments[id]
}

// Set overwrites the fragment at id.
func (g *Grammar) Set(id FragmentID, f Fragment) {
	g.Fragments[id] = f
}

// InternTerminal deduplicates data by value against the existing terminal
// table and returns its stable index, appending a new entry only if no
// equal byte string is already present.
func (g *Grammar) InternTerminal(data []byte) int {
	for i, existing := range g.Terminals {
		if string(existing) == string(data) {
			return i
		}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	g.Terminals = append(g.Terminals, cp)
	return len(g.Terminals) - 1
}

// AllocateTerminal interns data and allocates a Terminal fragment pointing
// at it.
func (g *Grammar) AllocateTerminal(data []byte) FragmentID {
	t := g.InternTerminal(data)
	return g.Allocate(Term(t))
}

// DefaultEntry returns the grammar's default start fragment: the first
// listed entry point. It panics if EntryPoints is empty, which Validate
// rejects before this can be reached in a built Grammar.
func (g *Grammar) DefaultEntry() FragmentID {
	return g.EntryPoints[0].ID
}

// Clone returns a deep, independent copy of g. Slices and maps are
// reallocated; Fragment.Children/Args slices are copied element-wise.
func (g *Grammar) Clone() *Grammar {
	out := &Grammar{
		Fragments:          make([]Fragment, len(g.Fragments)),
		Terminals:          make([][]byte, len(g.Terminals)),
		EntryPoints:        append([]EntryPoint(nil), g.EntryPoints...),
		NameToFragment:     make(map[string]FragmentID, len(g.NameToFragment)),
		SkipRecursionCheck: make(map[FragmentID]bool, len(g.SkipRecursionCheck)),
		SafeOnly:           g.SafeOnly,
		OutputTerminalIDs:  g.OutputTerminalIDs,
	}
	for i, f := range g.Fragments {
		out.Fragments[i] = f.Clone()
	}
	for i, t := range g.Terminals {
		out.Terminals[i] = append([]byte(nil), t...)
	}
	for k, v := range g.NameToFragment {
		out.NameToFragment[k] = v
	}
	for k, v := range g.SkipRecursionCheck {
		out.SkipRecursionCheck[k] = v
	}
	return out
}

// Clone returns a copy of f with its own Children/Args backing arrays, so
// mutating the clone's slices never aliases f's.
func (f Fragment) Clone() Fragment {
	out := f
	out.Children = append([]FragmentID(nil), f.Children...)
	out.Args = append([]FragmentID(nil), f.Args...)
	return out
}
