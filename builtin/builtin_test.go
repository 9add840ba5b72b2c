package builtin

import (
	"testing"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_numbersInteger(t *testing.T) {
	host := ir.New()
	id, err := Loader.Load(host, "numbers", "integer")
	require.NoError(t, err)

	assert.Contains(t, host.NameToFragment, "<!numbers.integer>")
	assert.Equal(t, host.NameToFragment["<!numbers.integer>"], id)
	assert.True(t, int(id) < len(host.Fragments))
}

func Test_Load_unknownModule(t *testing.T) {
	host := ir.New()
	_, err := Loader.Load(host, "nonexistent", "rule")
	require.Error(t, err)
}

func Test_Load_unknownRule(t *testing.T) {
	host := ir.New()
	_, err := Loader.Load(host, "numbers", "not_a_real_rule")
	require.Error(t, err)
}

func Test_Load_crossModuleReference_http_pulls_in_url_and_string(t *testing.T) {
	host := ir.New()
	_, err := Loader.Load(host, "http", "request")
	require.NoError(t, err)

	assert.Contains(t, host.NameToFragment, "<!http.request>")
	assert.Contains(t, host.NameToFragment, "<!url.path>")
	assert.Contains(t, host.NameToFragment, "<!string.word>")
}

func Test_Builder_withBuiltinLoader_resolvesModuleIdent(t *testing.T) {
	b := builder.New().SetBuiltinLoader(Loader)
	b.AddRule("<start>", []builder.Ident{builder.ModuleRule("numbers", "integer")})
	b.AddEntrypoint("<start>")

	g, err := b.Construct()
	require.NoError(t, err)
	assert.Contains(t, g.NameToFragment, "<!numbers.integer>")
}

func Test_Warmup_knownModulesSucceed(t *testing.T) {
	err := Warmup([]string{"string", "numbers"})
	require.NoError(t, err)

	g, err := load("string")
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func Test_Warmup_unknownModuleReportsErrorButContinues(t *testing.T) {
	err := Warmup([]string{"nonexistent", "url"})
	assert.Error(t, err)

	g, loadErr := load("url")
	require.NoError(t, loadErr)
	assert.NotNil(t, g)
}
