package editing

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
)

func TestPlanEdit_FirstMatchByByteOrder(t *testing.T) {
	src := "package main\n\nfunc f() {\n\tdebugLog(1)\n\tdebugLog(2)\n}\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	rule := model.InstantiatedRule{Rule: model.Rule{
		Name:  "remove-debug-log",
		Query: `(call_expression function: (identifier) @fn (#eq? @fn "debugLog")) @call`,
	}}

	edit, ok, err := PlanEdit(s, u.Root(), u.Code, rule, model.Substitutions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(u.Code[edit.Match.Range.StartByte:edit.Match.Range.EndByte]), "debugLog(1)")
}

func TestPlanEdit_NoMatchReturnsFalse(t *testing.T) {
	src := "package main\n\nfunc f() {}\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	rule := model.InstantiatedRule{Rule: model.Rule{
		Name:  "remove-debug-log",
		Query: `(call_expression function: (identifier) @fn (#eq? @fn "debugLog")) @call`,
	}}

	_, ok, err := PlanEdit(s, u.Root(), u.Code, rule, model.Substitutions{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanMatches_ReturnsAllInByteOrder(t *testing.T) {
	src := "package main\n\nfunc f() {\n\tdebugLog(1)\n\tdebugLog(2)\n}\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	rule := model.InstantiatedRule{Rule: model.Rule{
		Name:  "find-debug-log",
		Query: `(call_expression function: (identifier) @fn (#eq? @fn "debugLog")) @call`,
	}}

	matches, err := PlanMatches(s, u.Root(), u.Code, rule, model.Substitutions{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Less(t, matches[0].Range.StartByte, matches[1].Range.StartByte)
}
