package emit

import (
	"bytes"
	"fmt"

	"github.com/dekarrin/fgrammar/ir"
)

// emitFragmentFunc renders the single procedure for fragment id, including
// its depth guard unless the fragment is trivially non-recursive.
func emitFragmentFunc(g *ir.Grammar, id ir.FragmentID, f ir.Fragment, rt, typeName string) (fragmentFunc, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "func (g %s) fragment_%d(depth, maxDepth int, buf *%s.Buffer, rng %s.Rng) {\n", typeName, int(id), rt, rt)

	skip := g.SkipRecursionCheck[id]
	if !skip {
		writeDepthGuard(&buf, g, f, rt)
	}

	switch f.Kind {
	case ir.NonTerminal:
		writeNonTerminalBody(&buf, f, rt)
	case ir.Expression:
		writeExpressionBody(&buf, f)
	case ir.TerminalKind:
		writeTerminalBody(&buf, g, f)
	case ir.ScriptKind:
		writeScriptBody(&buf, f, rt)
	case ir.Nop:
		// emits nothing
	default:
		return fragmentFunc{}, fmt.Errorf("emit: fragment %d has unsupported kind %s", int(id), f.Kind)
	}

	buf.WriteString("}\n")
	return fragmentFunc{ID: int(id), Body: buf.String()}, nil
}

// writeDepthGuard inserts the "depth >= maxDepth" early-return block, per
// the base-case-fallback rule: a NonTerminal with at least one trivially
// non-recursive child dispatches uniformly among just those children
// instead of returning empty-handed.
func writeDepthGuard(buf *bytes.Buffer, g *ir.Grammar, f ir.Fragment, rt string) {
	if f.Kind != ir.NonTerminal {
		buf.WriteString("\tif depth >= maxDepth {\n\t\treturn\n\t}\n")
		return
	}

	var baseCases []ir.FragmentID
	for _, c := range f.Children {
		if g.SkipRecursionCheck[c] {
			baseCases = append(baseCases, c)
		}
	}
	if len(baseCases) == 0 {
		buf.WriteString("\tif depth >= maxDepth {\n\t\treturn\n\t}\n")
		return
	}

	fmt.Fprintf(buf, "\tif depth >= maxDepth {\n\t\tswitch %s.GenRange(rng, 0, %d) {\n", rt, len(baseCases))
	for i, c := range baseCases {
		fmt.Fprintf(buf, "\t\tcase %d:\n\t\t\tg.fragment_%d(depth+1, maxDepth, buf, rng)\n", i, int(c))
	}
	buf.WriteString("\t\t}\n\t\treturn\n\t}\n")
}

func writeNonTerminalBody(buf *bytes.Buffer, f ir.Fragment, rt string) {
	fmt.Fprintf(buf, "\tswitch %s.GenRange(rng, 0, %d) {\n", rt, len(f.Children))
	for i, c := range f.Children {
		fmt.Fprintf(buf, "\tcase %d:\n\t\tg.fragment_%d(depth+1, maxDepth, buf, rng)\n", i, int(c))
	}
	buf.WriteString("\t}\n")
}

func writeExpressionBody(buf *bytes.Buffer, f ir.Fragment) {
	for _, c := range f.Children {
		fmt.Fprintf(buf, "\tg.fragment_%d(depth+1, maxDepth, buf, rng)\n", int(c))
	}
}

func writeTerminalBody(buf *bytes.Buffer, g *ir.Grammar, f ir.Fragment) {
	if g.OutputTerminalIDs {
		fmt.Fprintf(buf, "\tbuf.PushID(%d)\n", f.Terminal)
		return
	}
	data := g.Terminals[f.Terminal]
	switch {
	case len(data) == 0:
		// nothing to write
	case len(data) == 1:
		fmt.Fprintf(buf, "\tbuf.PushByte(0x%02x)\n", data[0])
	case g.SafeOnly:
		fmt.Fprintf(buf, "\tbuf.Extend(%s)\n", byteSliceLiteral(data))
	default:
		fmt.Fprintf(buf, "\tbuf.ExtendFast(%s)\n", byteSliceLiteral(data))
	}
}

// writeScriptBody calls the opaque, caller-provided code identifier
// directly. With no args it is a generator called as code(buf, rng); with
// args each is first expanded into its own scratch buffer and the code is
// invoked with the accumulated byte slices, per the Script contract.
func writeScriptBody(buf *bytes.Buffer, f ir.Fragment, rt string) {
	if len(f.Args) == 0 {
		fmt.Fprintf(buf, "\t%s(buf, rng)\n", f.Code)
		return
	}
	for i, a := range f.Args {
		fmt.Fprintf(buf, "\tscratch%d := %s.NewBuffer()\n", i, rt)
		fmt.Fprintf(buf, "\tg.fragment_%d(depth+1, maxDepth, scratch%d, rng)\n", int(a), i)
	}
	buf.WriteString("\t")
	fmt.Fprintf(buf, "%s(buf, [][]byte{", f.Code)
	for i := range f.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "scratch%d.Bytes()", i)
	}
	buf.WriteString("}, rng)\n")
}
