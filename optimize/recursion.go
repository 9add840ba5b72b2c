package optimize

import "github.com/dekarrin/fgrammar/ir"

// markTrivialNonRecursive implements spec §4.5 as exactly two passes over
// the fragment table in index order. A NonTerminal/Expression is marked
// once all of its children are already marked, so a fragment whose
// children are marked only later (deeper nesting, or children at higher
// indices) can stay unmarked even though it cannot recurse; further passes
// could add such marks. The result is a lower bound: every marked fragment
// is non-recursive, and unmarked fragments always get a depth check, which
// costs runtime but never correctness.
func markTrivialNonRecursive(g *ir.Grammar) {
	for k := range g.SkipRecursionCheck {
		delete(g.SkipRecursionCheck, k)
	}
	for pass := 0; pass < 2; pass++ {
		for idx := range g.Fragments {
			id := ir.FragmentID(idx)
			f := g.Fragments[idx]
			switch f.Kind {
			case ir.TerminalKind, ir.Nop, ir.Unreachable:
				g.SkipRecursionCheck[id] = true
			case ir.Expression, ir.NonTerminal:
				canSkip := true
				for _, c := range f.Children {
					if !g.SkipRecursionCheck[c] {
						canSkip = false
						break
					}
				}
				if canSkip {
					g.SkipRecursionCheck[id] = true
				}
			case ir.ScriptKind:
				// never marked: scripts may recurse through opaque code.
			}
		}
	}
}
