package builder

import (
	"testing"

	"github.com/dekarrin/fgrammar/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Builder_Construct_simpleRule(t *testing.T) {
	b := New().
		WithTerminals("<start>", [][]byte{[]byte("a"), []byte("b")}).
		WithEntrypoint("<start>")

	g, err := b.Construct()
	require.NoError(t, err)

	assert.Equal(t, "<start>", g.EntryPoints[0].Name)
	start := g.Get(g.EntryPoints[0].ID)
	assert.Equal(t, ir.NonTerminal, start.Kind)
	assert.Len(t, start.Children, 2)
}

func Test_Builder_Construct_unresolvedReference(t *testing.T) {
	b := New().
		WithExpression("<start>", []string{"<missing>"}).
		WithEntrypoint("<start>")

	_, err := b.Construct()
	require.Error(t, err)
	var unresolved *UnresolvedReferenceError
	assert.ErrorAs(t, err, &unresolved)
}

func Test_Builder_Construct_noEntryPoint(t *testing.T) {
	b := New().WithTerminal("<start>", []byte("a"))

	_, err := b.Construct()
	require.Error(t, err)
	var noEntry *NoEntryPointError
	assert.ErrorAs(t, err, &noEntry)
}

func Test_Builder_Construct_entryPointNotInGrammar(t *testing.T) {
	b := New().
		WithTerminal("<start>", []byte("a")).
		WithEntrypoint("<nope>")

	_, err := b.Construct()
	require.Error(t, err)
	var noEntry *NoEntryPointError
	require.ErrorAs(t, err, &noEntry)
	assert.Equal(t, "<nope>", noEntry.Name)
}

func Test_Builder_AddScript_duplicateFails(t *testing.T) {
	b := New().
		WithGenerator("<num>", "gen_num").
		WithGenerator("<num>", "gen_num_again").
		WithEntrypoint("<num>")

	_, err := b.Construct()
	require.Error(t, err)
	var dup *DuplicateRuleError
	assert.ErrorAs(t, err, &dup)
}

func Test_Builder_AddExpression_concatenatesChildrenInOrder(t *testing.T) {
	b := New().
		WithTerminal("<a>", []byte("A")).
		WithTerminal("<b>", []byte("B")).
		WithExpression("<start>", []string{"<a>", "<b>"}).
		WithEntrypoint("<start>")

	g, err := b.Construct()
	require.NoError(t, err)

	start := g.Get(g.EntryPoints[0].ID)
	require.Len(t, start.Children, 1)
	expr := g.Get(start.Children[0])
	assert.Equal(t, ir.Expression, expr.Kind)
	assert.Len(t, expr.Children, 2)
}

func Test_Builder_AddScript_withArgs(t *testing.T) {
	b := New().
		WithTerminal("<n>", []byte("1")).
		WithScript("<checksum>", "gen_checksum", []string{"<n>"}).
		WithEntrypoint("<checksum>")

	g, err := b.Construct()
	require.NoError(t, err)

	scriptNonTerm := g.Get(g.EntryPoints[0].ID)
	require.Len(t, scriptNonTerm.Children, 1)
	script := g.Get(scriptNonTerm.Children[0])
	assert.Equal(t, ir.ScriptKind, script.Kind)
	assert.Equal(t, "gen_checksum", script.Code)
	assert.Len(t, script.Args, 1)
}
