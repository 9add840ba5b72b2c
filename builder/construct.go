package builder

import (
	"log"

	"github.com/dekarrin/fgrammar/ir"
)

// Construct lowers the accumulated rules and entry points into an
// unoptimized ir.Grammar. Construction fails fast on the first
// UnresolvedReferenceError, DuplicateRuleError, or NoEntryPointError.
func (b *Builder) Construct() (*ir.Grammar, error) {
	g := ir.New()

	// Pass 1: allocate one placeholder NonTerminal per rule name so
	// forward and self references resolve during pass 2.
	for _, name := range b.ruleOrder {
		id := g.Allocate(ir.Fragment{Kind: ir.NonTerminal})
		g.NameToFragment[name] = id
	}

	for _, name := range b.entrypoints {
		id, ok := g.NameToFragment[name]
		if !ok {
			return nil, &NoEntryPointError{Name: name}
		}
		g.EntryPoints = append(g.EntryPoints, ir.EntryPoint{Name: name, ID: id})
	}

	for _, name := range b.ruleOrder {
		r := b.rules[name]

		if r.isScript {
			if r.duplicate {
				return nil, &DuplicateRuleError{Name: name}
			}
			argIDs := make([]ir.FragmentID, len(r.argNames))
			for i, arg := range r.argNames {
				id, err := b.resolveIdent(g, Rule(arg))
				if err != nil {
					return nil, err
				}
				argIDs[i] = id
			}
			variant := g.Allocate(ir.Script(r.code, argIDs...))
			g.Set(g.NameToFragment[name], ir.NonTerm(variant))
			continue
		}

		variants := make([]ir.FragmentID, 0, len(r.alternatives))
		for _, alt := range r.alternatives {
			options := make([]ir.FragmentID, 0, len(alt))
			for _, tok := range alt {
				id, err := b.resolveIdent(g, tok)
				if err != nil {
					return nil, err
				}
				options = append(options, id)
			}
			variants = append(variants, g.Allocate(ir.Expr(options...)))
		}
		g.Set(g.NameToFragment[name], ir.NonTerm(variants...))
	}

	if len(g.EntryPoints) == 0 {
		return nil, &NoEntryPointError{}
	}

	markTrivialNonRecursive(g)

	return g, nil
}

// resolveIdent resolves a single token of an alternative (or a script's arg
// list) to a fragment id, per spec §4.1 step 3: literal data is interned as
// a Terminal, a rule name already in the grammar is wrapped in a fresh
// NonTerminal for the optimizer to later collapse, and anything else is
// tried as a builtin reference before failing.
func (b *Builder) resolveIdent(g *ir.Grammar, tok Ident) (ir.FragmentID, error) {
	switch tok.kind {
	case identData:
		return g.AllocateTerminal(tok.data), nil
	case identRule:
		if id, ok := g.NameToFragment[tok.name]; ok {
			return g.Allocate(ir.NonTerm(id)), nil
		}
		if module, rule, ok := parseBuiltinRef(tok.name); ok && b.loader != nil {
			id, err := b.loader.Load(g, module, rule)
			if err != nil {
				return 0, err
			}
			return id, nil
		}
		log.Printf("builder: warning: %q looks like a rule reference but resolves to neither a grammar rule nor a builtin", tok.name)
		return 0, &UnresolvedReferenceError{Name: tok.name}
	case identModule:
		if b.loader == nil {
			return 0, &UnresolvedReferenceError{Name: tok.module + "." + tok.name}
		}
		id, err := b.loader.Load(g, tok.module, tok.name)
		if err != nil {
			return 0, err
		}
		return id, nil
	}
	return 0, &UnresolvedReferenceError{Name: "<invalid ident>"}
}

// markTrivialNonRecursive runs the two-pass recursion analysis described in
// spec §4.5. It is duplicated (in package optimize, as the canonical
// implementation) so that a freshly Constructed, not-yet-optimized Grammar
// already has a usable SkipRecursionCheck set, matching the original
// crate's FGrammarBuilder::construct behavior of calling
// find_trivial_non_recursives once up front.
func markTrivialNonRecursive(g *ir.Grammar) {
	for k := range g.SkipRecursionCheck {
		delete(g.SkipRecursionCheck, k)
	}
	for pass := 0; pass < 2; pass++ {
		for id := range g.Fragments {
			fid := ir.FragmentID(id)
			f := g.Fragments[id]
			switch f.Kind {
			case ir.TerminalKind, ir.Nop, ir.Unreachable:
				g.SkipRecursionCheck[fid] = true
			case ir.Expression, ir.NonTerminal:
				canSkip := true
				for _, c := range f.Children {
					if !g.SkipRecursionCheck[c] {
						canSkip = false
						break
					}
				}
				if canSkip {
					g.SkipRecursionCheck[fid] = true
				}
			}
		}
	}
}
