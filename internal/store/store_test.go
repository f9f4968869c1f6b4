package store

import (
	"sync"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piranha-go/piranha/internal/model"
)

func TestStore_QueryCachesCompiledQuery(t *testing.T) {
	s := New(DefaultArguments(), golang.GetLanguage())
	q1, err := s.Query(`(call_expression) @c`)
	require.NoError(t, err)
	q2, err := s.Query(`(call_expression) @c`)
	require.NoError(t, err)
	assert.Same(t, q1, q2)
}

func TestStore_QueryCacheConcurrentSafe(t *testing.T) {
	s := New(DefaultArguments(), golang.GetLanguage())
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Query(`(identifier) @id`)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestStore_AddGlobalAccumulates(t *testing.T) {
	s := New(DefaultArguments(), golang.GetLanguage())
	s.AddGlobal(model.Rule{Name: "r1"})
	s.AddGlobal(model.Rule{Name: "r2"})
	rules := s.GlobalRules()
	require.Len(t, rules, 2)
	assert.Equal(t, model.Id("r1"), rules[0].Name)
	assert.Equal(t, model.Id("r2"), rules[1].Name)
}

func TestDefaultArguments(t *testing.T) {
	args := DefaultArguments()
	assert.Equal(t, "GLOBAL_TAG", args.GlobalTagPrefix)
	assert.Equal(t, 4, args.NumberOfAncestorsInParentScope)
}
