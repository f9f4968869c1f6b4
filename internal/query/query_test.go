package query

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/syntaxtree"
)

func golangLang() *sitter.Language { return golang.GetLanguage() }

func parse(t *testing.T, src string) (*syntaxtree.Facade, *sitter.Tree, []byte) {
	t.Helper()
	f := syntaxtree.New(golangLang())
	source := []byte(src)
	tree, err := f.Parse(context.Background(), source, nil)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return f, tree, source
}

func TestEvaluate_DeterministicPreOrder(t *testing.T) {
	f, tree, source := parse(t, "package p\nfunc A() { a(); b(); c() }\n")

	q, err := Compile(`(call_expression function: (identifier) @name)`, golangLang())
	require.NoError(t, err)
	defer q.Close()

	matches := Evaluate(q, f.Root(tree), source, true)
	require.Len(t, matches, 3)
	require.Equal(t, "a", matches[0].Captures["@name"])
	require.Equal(t, "b", matches[1].Captures["@name"])
	require.Equal(t, "c", matches[2].Captures["@name"])
	require.Less(t, matches[0].StartByte(), matches[1].StartByte())
	require.Less(t, matches[1].StartByte(), matches[2].StartByte())
}

func TestGetFirst_ReturnsEarliestMatch(t *testing.T) {
	f, tree, source := parse(t, "package p\nfunc A() { a(); b() }\n")

	q, err := Compile(`(call_expression function: (identifier) @name)`, golangLang())
	require.NoError(t, err)
	defer q.Close()

	m, ok := GetFirst(q, f.Root(tree), source, true)
	require.True(t, ok)
	require.Equal(t, "a", m.Captures["@name"])
}

func TestGetFirst_NoMatch(t *testing.T) {
	f, tree, source := parse(t, "package p\n")

	q, err := Compile(`(call_expression function: (identifier) @name)`, golangLang())
	require.NoError(t, err)
	defer q.Close()

	_, ok := GetFirst(q, f.Root(tree), source, true)
	require.False(t, ok)
}
