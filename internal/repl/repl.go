// Package repl is an interactive preview session for a built grammar: it
// lets an operator repeatedly sample generate_new output or inspect the
// terminal table and fragment counts from a readline-edited prompt,
// adapted from the interactive session loop in cmd/tqi.
package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/fgrammar/genrt"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/dekarrin/rosed"
)

// Run starts an interactive session over g, reading commands from in
// through readline and writing output to out. It blocks
// until the session ends ("quit"/"exit", or EOF on the input stream).
func Run(g *ir.Grammar, maxDepth int, in io.Reader, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "fgrammar> ",
		Stdin:  io.NopCloser(in),
		Stdout: out,
	})
	if err != nil {
		return fmt.Errorf("repl: create readline session: %w", err)
	}
	defer rl.Close()

	sess := &session{g: g, maxDepth: maxDepth, out: out}
	fmt.Fprintln(out, rosed.Edit("fgrammar interactive preview. Type \"help\" for commands.").Wrap(76).String())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sess.dispatch(line) {
			return nil
		}
	}
}

type session struct {
	g        *ir.Grammar
	maxDepth int
	out      io.Writer
}

// dispatch runs one command line and reports whether the session should
// end.
func (s *session) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, rosed.Edit(
			"Commands: sample [n] | terminals | fragments | depth N | help | quit",
		).Wrap(76).String())
	case "sample":
		n := 1
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				n = v
			}
		}
		s.sample(n)
	case "terminals":
		fmt.Fprintf(s.out, "%d terminals in table\n", len(s.g.Terminals))
	case "fragments":
		fmt.Fprintf(s.out, "%d fragments in table\n", len(s.g.Fragments))
	case "depth":
		if len(args) == 1 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				s.maxDepth = v
				fmt.Fprintf(s.out, "max_depth set to %d\n", v)
				return false
			}
		}
		fmt.Fprintln(s.out, "usage: depth N")
	default:
		fmt.Fprintf(s.out, "unknown command %q; type \"help\"\n", cmd)
	}
	return false
}

// sample draws n outputs and prints them. Each output is driven by a
// BufRng over a 64-byte pattern derived from its index, so the same
// session prints the same samples every time; this avoids pulling in a
// full CSPRNG dependency for what is purely an eyeballing tool.
func (s *session) sample(n int) {
	entry := s.g.DefaultEntry()
	seed := make([]byte, 64)
	for i := 0; i < n; i++ {
		for j := range seed {
			seed[j] = byte((i*2654435761 + j*40503) >> uint((j%4)*8))
		}
		rng := genrt.NewBufRng(seed)
		buf := genrt.NewBuffer()
		generate(s.g, entry, 0, s.maxDepth, buf, rng)
		fmt.Fprintf(s.out, "%d: %q\n", i, string(buf.Bytes()))
	}
}

// generate is a tree-walking interpreter over the IR, used only by the
// preview session so it can sample a grammar without first going through
// package emit's generated-source step.
func generate(g *ir.Grammar, id ir.FragmentID, depth, maxDepth int, buf *genrt.Buffer, rng genrt.Rng) {
	f := g.Get(id)
	switch f.Kind {
	case ir.NonTerminal:
		if depth >= maxDepth {
			var baseCases []ir.FragmentID
			for _, c := range f.Children {
				if g.SkipRecursionCheck[c] {
					baseCases = append(baseCases, c)
				}
			}
			if len(baseCases) == 0 {
				return
			}
			choice := baseCases[genrt.GenRange(rng, 0, uint32(len(baseCases)))]
			generate(g, choice, depth+1, maxDepth, buf, rng)
			return
		}
		choice := f.Children[genrt.GenRange(rng, 0, uint32(len(f.Children)))]
		generate(g, choice, depth+1, maxDepth, buf, rng)
	case ir.Expression:
		if depth >= maxDepth {
			return
		}
		for _, c := range f.Children {
			generate(g, c, depth+1, maxDepth, buf, rng)
		}
	case ir.TerminalKind:
		if g.OutputTerminalIDs {
			buf.PushID(f.Terminal)
		} else {
			buf.Extend(g.Terminals[f.Terminal])
		}
	case ir.ScriptKind:
		// the preview session has no host binary to resolve f.Code
		// against, so script fragments sample as empty output.
	case ir.Nop, ir.Unreachable:
	}
}
