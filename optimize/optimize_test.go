package optimize

import (
	"testing"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFromJSON(t *testing.T, doc string, start string) *ir.Grammar {
	t.Helper()
	parsed, err := builder.ParseJSONGrammar([]byte(doc))
	require.NoError(t, err)
	b, err := builder.FromJSONGrammar(parsed, start)
	require.NoError(t, err)
	g, err := Build(b)
	require.NoError(t, err)
	return g
}

func Test_Optimize_terminalConcatenation(t *testing.T) {
	g := buildFromJSON(t, `{"<start>": [["a", "b", "c"]]}`, "<start>")
	require.NoError(t, g.Validate())

	start := g.Get(g.DefaultEntry())
	require.Equal(t, ir.TerminalKind, start.Kind)
	assert.Equal(t, "abc", string(g.Terminals[start.Terminal]))
}

func Test_Optimize_unitCollapse(t *testing.T) {
	g := buildFromJSON(t, `{"<a>": [["<b>"]], "<b>": [["x"]]}`, "<a>")
	require.NoError(t, g.Validate())

	start := g.Get(g.DefaultEntry())
	require.Equal(t, ir.TerminalKind, start.Kind)
	assert.Equal(t, "x", string(g.Terminals[start.Terminal]))
}

func Test_Optimize_reachabilityPruning(t *testing.T) {
	g := buildFromJSON(t, `{
		"<a>": [["only a"]],
		"<b>": [["unreachable b"]],
		"<c>": [["unreachable c"]]
	}`, "<a>")
	require.NoError(t, g.Validate())

	reachableCount := 0
	for _, f := range g.Fragments {
		if f.Kind != ir.Unreachable {
			reachableCount++
		}
	}
	assert.Equal(t, 1, reachableCount)
}

func Test_Optimize_noDuplicateTerminalsAfterReduce(t *testing.T) {
	g := buildFromJSON(t, `{
		"<start>": [["<a>", "<b>"]],
		"<a>": [["same"]],
		"<b>": [["same"]]
	}`, "<start>")
	require.NoError(t, g.Validate())

	seen := map[string]bool{}
	for _, term := range g.Terminals {
		key := string(term)
		require.False(t, seen[key], "duplicate terminal %q", key)
		seen[key] = true
	}
}

func Test_Optimize_depthBoundedRecursionHasBaseCaseMarked(t *testing.T) {
	g := buildFromJSON(t, `{"<s>": [["a", "<s>"], ["b"]]}`, "<s>")
	require.NoError(t, g.Validate())

	start := g.DefaultEntry()
	startFrag := g.Get(start)
	require.Equal(t, ir.NonTerminal, startFrag.Kind)

	hasBaseCase := false
	for _, alt := range startFrag.Children {
		if g.SkipRecursionCheck[alt] {
			hasBaseCase = true
		}
	}
	assert.True(t, hasBaseCase, "at least one alternative of a recursive rule should be trivially non-recursive")
}

func Test_Optimize_scriptNeverMarkedTriviallyNonRecursive(t *testing.T) {
	b := builder.New().
		WithGenerator("<gen>", "gen_fn").
		WithEntrypoint("<gen>")

	g, err := Build(b)
	require.NoError(t, err)

	for _, f := range g.Fragments {
		if f.Kind == ir.ScriptKind {
			// the script fragment's own id must never be in SkipRecursionCheck
			for id, skip := range g.SkipRecursionCheck {
				if g.Fragments[id].Kind == ir.ScriptKind {
					assert.False(t, skip)
				}
			}
		}
	}
}
