package summary

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/syntaxtree"
	"github.com/piranha-go/piranha/internal/unit"
)

func TestFromUnit_CarriesRewritesAndGlobals(t *testing.T) {
	src := "package main\n\nfunc f() {}\n"
	facade := syntaxtree.New(golang.GetLanguage())
	u, err := unit.New(context.Background(), facade, "main.go", []byte(src), store.DefaultArguments())
	require.NoError(t, err)
	t.Cleanup(u.Close)

	u.Rewrites = append(u.Rewrites, model.Edit{RuleName: "remove-debug-log"})
	u.Substitutions = model.Substitutions{"@GLOBAL_TAG_flag": "removed"}

	s := FromUnit(u, src)
	assert.Equal(t, "main.go", s.Path)
	assert.Equal(t, src, s.OriginalText)
	assert.Equal(t, src, s.FinalText)
	require.Len(t, s.Rewrites, 1)
	assert.Equal(t, "removed", s.GlobalSubstitutions["@GLOBAL_TAG_flag"])
}

func TestSummary_DiffEmptyWhenUnchanged(t *testing.T) {
	s := Summary{OriginalText: "a\n", FinalText: "a\n"}
	diff, err := s.Diff(3)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestSummary_DiffShowsChange(t *testing.T) {
	s := Summary{Path: "main.go", OriginalText: "a\nb\nc\n", FinalText: "a\nx\nc\n"}
	diff, err := s.Diff(3)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/main.go")
	assert.Contains(t, diff, "+++ b/main.go")
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+x")
}

func TestSummary_JSONPreservesFieldNames(t *testing.T) {
	s := Summary{Path: "main.go", GlobalSubstitutions: map[string]string{}}
	raw, err := s.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"path": "main.go"`)
	assert.Contains(t, string(raw), `"global_substitutions"`)
}
