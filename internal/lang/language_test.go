package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownLanguage(t *testing.T) {
	d, err := Get("go")
	require.NoError(t, err)
	assert.Equal(t, "go", d.Name)
	assert.NotNil(t, d.Grammar)
}

func TestGet_UnknownLanguageIsConfigError(t *testing.T) {
	_, err := Get("cobol")
	assert.ErrorContains(t, err, "cobol")
}

func TestScopeTemplateFor(t *testing.T) {
	d, err := Get("go")
	require.NoError(t, err)
	tmpl, ok := d.ScopeTemplateFor("Method")
	require.True(t, ok)
	assert.Contains(t, tmpl.Template, "function_declaration")

	_, ok = d.ScopeTemplateFor("Nonexistent")
	assert.False(t, ok)
}
