package emit

import (
	"strings"
	"testing"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/dekarrin/fgrammar/optimize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOptimized(t *testing.T, doc, start string) *ir.Grammar {
	t.Helper()
	parsed, err := builder.ParseJSONGrammar([]byte(doc))
	require.NoError(t, err)
	b, err := builder.FromJSONGrammar(parsed, start)
	require.NoError(t, err)
	g, err := optimize.Build(b)
	require.NoError(t, err)
	return g
}

func Test_Emit_terminalConcatenation(t *testing.T) {
	g := buildOptimized(t, `{"<start>": [["a", "b", "c"]]}`, "<start>")
	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "buf.ExtendFast")
	assert.Equal(t, 1, strings.Count(out, "func (g Grammar) fragment_"))
}

func Test_Emit_unitCollapse(t *testing.T) {
	g := buildOptimized(t, `{"<a>": [["<b>"]], "<b>": [["x"]]}`, "<a>")
	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)

	out := string(src)
	assert.Equal(t, 1, strings.Count(out, "func (g Grammar) fragment_"))
	assert.Contains(t, out, "0x78") // 'x'
}

func Test_Emit_reachabilityPruning(t *testing.T) {
	g := buildOptimized(t, `{
		"<a>": [["only a"]],
		"<b>": [["unreachable b"]],
		"<c>": [["unreachable c"]]
	}`, "<a>")
	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)

	out := string(src)
	assert.Equal(t, 1, strings.Count(out, "func (g Grammar) fragment_"))
}

func Test_Emit_defaultEquivalence(t *testing.T) {
	g := buildOptimized(t, `{"<start>": [["hi"]]}`, "<start>")
	src, err := Emit(g, Options{Package: "generated", TypeName: "Gram"})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "func (g Gram) GenerateInto(")
	assert.Contains(t, out, "func (g Gram) GenerateStartInto(")
}

func Test_Emit_depthGuardWithBaseCase(t *testing.T) {
	g := buildOptimized(t, `{"<s>": [["a", "<s>"], ["b"]]}`, "<s>")
	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "if depth >= maxDepth {")
	assert.Contains(t, out, "GenRange(rng, 0,")
}

func Test_Emit_noEntryPointsFails(t *testing.T) {
	g := ir.New()
	_, err := Emit(g, Options{Package: "generated"})
	require.Error(t, err)
}

func Test_Emit_defaultMaxDepthFallsBackWhenUnset(t *testing.T) {
	g := buildOptimized(t, `{"<start>": [["hi"]]}`, "<start>")
	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "const defaultMaxDepthGrammar = 256")
	assert.Contains(t, out, "func resolveMaxDepthGrammar(maxDepth int) int {")
	assert.Contains(t, out, "maxDepth = resolveMaxDepthGrammar(maxDepth)")
}

func Test_Emit_defaultMaxDepthHonorsOption(t *testing.T) {
	g := buildOptimized(t, `{"<start>": [["hi"]]}`, "<start>")
	src, err := Emit(g, Options{Package: "generated", TypeName: "Gram", DefaultMaxDepth: 64})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "const defaultMaxDepthGram = 64")
	assert.Contains(t, out, "resolveMaxDepthGram(maxDepth)")
}

func Test_Emit_idModeEmitsPushID(t *testing.T) {
	b := builder.New().WithTerminal("<start>", []byte("x")).WithEntrypoint("<start>")
	g, err := optimize.Build(b)
	require.NoError(t, err)
	g.OutputTerminalIDs = true

	src, err := Emit(g, Options{Package: "generated"})
	require.NoError(t, err)
	assert.Contains(t, string(src), "buf.PushID(")
}
