package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseLevel_recognizedNames(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"DEBUG":   Debug,
		"info":    Info,
		"warn":    Warn,
		"warning": Warn,
		"error":   Error,
	}
	for name, want := range cases {
		got, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func Test_ParseLevel_unrecognizedNameFallsBackToInfo(t *testing.T) {
	lvl, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, Info, lvl)
}

func Test_SetLevel_filtersBelowThreshold(t *testing.T) {
	t.Cleanup(func() { SetLevel(Info) })
	SetLevel(Error)
	assert.True(t, Error >= threshold)
	assert.True(t, Warn < threshold)
}
