package editing

import (
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
	"github.com/piranha-go/piranha/internal/store"
)

func TestIsSatisfied_PassesWhenForbiddenQueryAbsent(t *testing.T) {
	src := "package main\n\nfunc f() {\n\tx := 1\n\t_ = x\n}\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	q, err := s.Query(`(short_var_declaration) @decl`)
	require.NoError(t, err)
	m, ok := query.GetFirst(q, u.Root(), u.Code, true)
	require.True(t, ok)
	node := u.Root().DescendantForByteRange(m.Range.StartByte, m.Range.EndByte)

	rule := model.Rule{
		Name: "r",
		Constraints: []model.Constraint{{
			Matcher:          `(function_declaration) @fn`,
			ForbiddenQueries: []string{`(call_expression function: (identifier) @fn (#eq? @fn "panic"))`},
		}},
	}

	ok, err = IsSatisfied(s, node, rule, model.Substitutions{}, u.Code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSatisfied_FailsWhenForbiddenQueryPresent(t *testing.T) {
	src := "package main\n\nfunc f() {\n\tx := 1\n\tpanic(\"no\")\n\t_ = x\n}\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	q, err := s.Query(`(short_var_declaration) @decl`)
	require.NoError(t, err)
	m, ok := query.GetFirst(q, u.Root(), u.Code, true)
	require.True(t, ok)
	node := u.Root().DescendantForByteRange(m.Range.StartByte, m.Range.EndByte)

	rule := model.Rule{
		Name: "r",
		Constraints: []model.Constraint{{
			Matcher:          `(function_declaration) @fn`,
			ForbiddenQueries: []string{`(call_expression function: (identifier) @fn (#eq? @fn "panic"))`},
		}},
	}

	ok, err = IsSatisfied(s, node, rule, model.Substitutions{}, u.Code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSatisfied_FailsWhenNoAncestorMatchesMatcher(t *testing.T) {
	src := "package main\n\nvar x = 1\n"
	args := store.DefaultArguments()
	u := newUnit(t, src, args)
	s := store.New(args, golang.GetLanguage())

	rule := model.Rule{
		Name: "r",
		Constraints: []model.Constraint{{
			Matcher: `(function_declaration) @fn`,
		}},
	}

	ok, err := IsSatisfied(s, u.Root(), rule, model.Substitutions{}, u.Code)
	require.NoError(t, err)
	assert.False(t, ok)
}
