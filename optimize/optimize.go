// Package optimize implements the fixed-point grammar simplification pass
// (spec §4.3) and the companion recursion-termination analysis (§4.5).
package optimize

import (
	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/ir"
)

// Build constructs b and optimizes the result in one step, mirroring the
// original crate's FGrammarBuilder::build.
func Build(b *builder.Builder) (*ir.Grammar, error) {
	g, err := b.Construct()
	if err != nil {
		return nil, err
	}
	Optimize(g)
	return g, nil
}

// Optimize runs the fixed-point simplification loop to convergence, sweeps
// unreachable fragments, deduplicates the terminal table, and re-derives
// the trivially-non-recursive fragment set. It mutates g in place.
func Optimize(g *ir.Grammar) {
	nop := make(map[ir.FragmentID]bool)

	changed := true
	for changed {
		changed = false
		for idx := range g.Fragments {
			id := ir.FragmentID(idx)
			f := g.Fragments[idx]

			switch f.Kind {
			case ir.NonTerminal:
				if len(f.Children) == 1 {
					g.Fragments[idx] = g.Fragments[f.Children[0]].Clone()
					changed = true
				}

			case ir.Expression:
				switch len(f.Children) {
				case 0:
					g.Fragments[idx] = ir.Fragment{Kind: ir.Nop}
					nop[id] = true
					changed = true
					continue
				case 1:
					g.Fragments[idx] = g.Fragments[f.Children[0]].Clone()
					changed = true
					continue
				}

				kept := f.Children[:0:0]
				for _, c := range f.Children {
					if nop[c] {
						changed = true
						continue
					}
					kept = append(kept, c)
				}
				if len(kept) != len(f.Children) {
					f.Children = kept
					g.Fragments[idx] = f
				}

				if allTerminals(g, f.Children) {
					concatenated := make([]byte, 0, len(f.Children)*4)
					for _, c := range f.Children {
						t := g.Fragments[c]
						concatenated = append(concatenated, g.Terminals[t.Terminal]...)
					}
					newIdx := g.InternTerminal(concatenated)
					g.Fragments[idx] = ir.Term(newIdx)
					changed = true
				}

			case ir.TerminalKind, ir.Nop, ir.Unreachable, ir.ScriptKind:
				// already maximally optimized
			}
		}
	}

	sweepUnreachable(g)
	reduceTerminals(g)
	markTrivialNonRecursive(g)
}

func allTerminals(g *ir.Grammar, children []ir.FragmentID) bool {
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if g.Fragments[c].Kind != ir.TerminalKind {
			return false
		}
	}
	return true
}

// sweepUnreachable replaces every fragment not reachable from an entry
// point with Unreachable, per spec §4.3.
func sweepUnreachable(g *ir.Grammar) {
	newFragments := make([]ir.Fragment, len(g.Fragments))
	for i := range newFragments {
		newFragments[i] = ir.Fragment{Kind: ir.Unreachable}
	}

	seen := make(map[ir.FragmentID]bool, len(g.Fragments))
	worklist := make([]ir.FragmentID, 0, len(g.EntryPoints))
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
		f := g.Fragments[id]
		newFragments[id] = f.Clone()
		switch f.Kind {
		case ir.NonTerminal, ir.Expression:
			worklist = append(worklist, f.Children...)
		case ir.ScriptKind:
			worklist = append(worklist, f.Args...)
		}
	}

	g.Fragments = newFragments
}

// reduceTerminals rebuilds the terminal table by re-interning every
// Terminal fragment's bytes under a fresh table and rewriting indices.
func reduceTerminals(g *ir.Grammar) {
	old := g.Terminals
	g.Terminals = nil
	for idx, f := range g.Fragments {
		if f.Kind != ir.TerminalKind {
			continue
		}
		newIdx := g.InternTerminal(old[f.Terminal])
		g.Fragments[idx].Terminal = newIdx
	}
}
