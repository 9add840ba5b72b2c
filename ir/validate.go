package ir

import "fmt"

// Validate checks the invariants §3/§8 of the grammar IR require after a
// build: in-bounds children, no reachable Unreachable fragment, a
// non-empty entry-point list, collapsed Expression/NonTerminal shapes, a
// duplicate-free terminal table, and in-bounds terminal indices.
//
// It is called from tests; no build path runs it, since the builder and
// optimizer maintain these invariants by construction.
func (g *Grammar) Validate() error {
	if len(g.EntryPoints) == 0 {
		return fmt.Errorf("ir: grammar has no entry points")
	}

	for i, t := range g.Terminals {
		key := string(t)
		for j, other := range g.Terminals {
			if i != j && string(other) == key {
				return fmt.Errorf("ir: duplicate terminal %q at indices %d and %d", t, i, j)
			}
		}
	}

	reachable := g.Reachable()
	for _, ep := range g.EntryPoints {
		if int(ep.ID) < 0 || int(ep.ID) >= len(g.Fragments) {
			return fmt.Errorf("ir: entry point %q references out-of-bounds fragment %d", ep.Name, ep.ID)
		}
		if !reachable[ep.ID] {
			return fmt.Errorf("ir: entry point %q is not reachable from itself", ep.Name)
		}
	}

	for id := range g.Fragments {
		fid := FragmentID(id)
		if !reachable[fid] {
			continue
		}
		f := g.Fragments[id]
		if f.Kind == Unreachable {
			return fmt.Errorf("ir: reachable fragment %d is Unreachable", id)
		}
		for _, c := range f.Children {
			if err := g.checkChild(fid, c, reachable); err != nil {
				return err
			}
		}
		for _, a := range f.Args {
			if err := g.checkChild(fid, a, reachable); err != nil {
				return err
			}
		}
		switch f.Kind {
		case TerminalKind:
			if f.Terminal < 0 || f.Terminal >= len(g.Terminals) {
				return fmt.Errorf("ir: fragment %d references out-of-bounds terminal %d", id, f.Terminal)
			}
		case Expression:
			if len(f.Children) <= 1 {
				return fmt.Errorf("ir: reachable Expression %d has length %d, want > 1", id, len(f.Children))
			}
			allTerm := true
			for _, c := range f.Children {
				child := g.Fragments[c]
				if child.Kind == Nop {
					return fmt.Errorf("ir: reachable Expression %d contains a Nop child %d", id, c)
				}
				if child.Kind != TerminalKind {
					allTerm = false
				}
			}
			if allTerm {
				return fmt.Errorf("ir: reachable Expression %d consists entirely of Terminal children", id)
			}
		case NonTerminal:
			if len(f.Children) == 1 {
				return fmt.Errorf("ir: reachable NonTerminal %d has exactly one alternative", id)
			}
		}
	}

	for name, id := range g.NameToFragment {
		if len(name) >= 2 && name[:2] == "<!" {
			continue
		}
		// raw rule identifiers are otherwise unconstrained; this loop only
		// exists to keep the id reference itself sane.
		if int(id) < 0 || int(id) >= len(g.Fragments) {
			return fmt.Errorf("ir: name %q maps to out-of-bounds fragment %d", name, id)
		}
	}

	return nil
}

func (g *Grammar) checkChild(parent, child FragmentID, reachable map[FragmentID]bool) error {
	if int(child) < 0 || int(child) >= len(g.Fragments) {
		return fmt.Errorf("ir: fragment %d references out-of-bounds child %d", parent, child)
	}
	if g.Fragments[child].Kind == Unreachable {
		return fmt.Errorf("ir: fragment %d references Unreachable child %d", parent, child)
	}
	return nil
}

// Reachable runs a worklist from every entry point and returns the set of
// fragment IDs reachable from some entry point.
func (g *Grammar) Reachable() map[FragmentID]bool {
	seen := make(map[FragmentID]bool, len(g.Fragments))
	worklist := make([]FragmentID, 0, len(g.EntryPoints))
	for _, ep := range g.EntryPoints {
		worklist = append(worklist, ep.ID)
	}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[id] {
			continue
		}
		if int(id) < 0 || int(id) >= len(g.Fragments) {
			continue
		}
		seen[id] = true
		f := g.Fragments[id]
		worklist = append(worklist, f.Children...)
		worklist = append(worklist, f.Args...)
	}
	return seen
}
