package scope

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/lang"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/syntaxtree"
)

const goSource = `package main

func outer() {
	x := 1
	func() {
		y := x + 1
		_ = y
	}()
}

func other() {
	_ = 2
}
`

func parseGo(t *testing.T, src string) (*sitter.Node, []byte) {
	t.Helper()
	f := syntaxtree.New(golang.GetLanguage())
	source := []byte(src)
	tree, err := f.Parse(context.Background(), source, nil)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return f.Root(tree), source
}

func byteOffset(src, needle string) uint32 {
	for i := 0; i+len(needle) <= len(src); i++ {
		if src[i:i+len(needle)] == needle {
			return uint32(i)
		}
	}
	return 0
}

func TestResolve_FindsSmallestEnclosingMethod(t *testing.T) {
	root, source := parseGo(t, goSource)
	d, err := lang.Get("go")
	require.NoError(t, err)
	s := store.New(store.DefaultArguments(), golang.GetLanguage())

	anchor := byteOffset(goSource, "y := x + 1")
	node, ok, err := Resolve(s, d, "Method", root, source, anchor, anchor+1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, node.Content(source), "y := x + 1")
	assert.NotContains(t, node.Content(source), "func other")
}

func TestResolve_NoEnclosingScopeReturnsFalse(t *testing.T) {
	root, source := parseGo(t, goSource)
	d, err := lang.Get("go")
	require.NoError(t, err)
	s := store.New(store.DefaultArguments(), golang.GetLanguage())

	_, ok, err := Resolve(s, d, "Class", root, source, 0, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolve_UnknownTagIsError(t *testing.T) {
	root, source := parseGo(t, goSource)
	d, err := lang.Get("go")
	require.NoError(t, err)
	s := store.New(store.DefaultArguments(), golang.GetLanguage())

	_, _, err = Resolve(s, d, "Nonexistent", root, source, 0, 1)
	assert.ErrorContains(t, err, "Nonexistent")
}
