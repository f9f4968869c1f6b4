package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	golang_lang "github.com/piranha-go/piranha/internal/lang"

	"github.com/piranha-go/piranha/internal/graph"
	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOrchestrator_Run_SingleFileNoGlobals(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.go")
	writeFile(t, pathA, "package main\n\nfunc f() {\n\tdebugLog(1)\n}\n")

	args := store.DefaultArguments()
	args.PathToCodebase = dir
	args.Language = "go"

	d, err := golang_lang.Get("go")
	require.NoError(t, err)

	g := graph.New()
	rules := map[model.Id]model.Rule{
		"remove-debug-log": {
			Name:   "remove-debug-log",
			Query:  `(call_expression function: (identifier) @fn (#eq? @fn "debugLog")) @call`,
			IsSeed: true,
		},
	}
	g.AddSeed("remove-debug-log")

	o := &Orchestrator{
		Store: store.New(args, golang.GetLanguage()),
		Graph: g,
		Lang:  d,
		Rules: rules,
	}

	summaries, err := o.Run(context.Background(), []string{pathA})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotContains(t, summaries[0].FinalText, "debugLog")
	assert.Len(t, summaries[0].Rewrites, 1)
}

func TestOrchestrator_Run_CrossFileGlobalSubstitutionFires(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.go")
	pathB := filepath.Join(dir, "b.go")
	writeFile(t, pathA, "package main\n\nfunc f() {\n\tmarkRemoved()\n}\n")
	writeFile(t, pathB, "package main\n\nfunc g() {\n\tuseFlag(1)\n}\n")

	args := store.DefaultArguments()
	args.PathToCodebase = dir
	args.Language = "go"

	d, err := golang_lang.Get("go")
	require.NoError(t, err)

	g := graph.New()
	rules := map[model.Id]model.Rule{
		"seed-global": {
			Name:   "seed-global",
			Query:  `(call_expression function: (identifier) @fn (#eq? @fn "markRemoved")) @GLOBAL_TAG_flag`,
			IsSeed: true,
		},
		"consume-global": {
			Name:                "consume-global",
			Query:               `(call_expression function: (identifier) @fn (#eq? @fn "useFlag")) @call`,
			ReplacementTemplate: "noop()",
		},
	}
	g.AddSeed("seed-global")
	g.AddEdge(graph.Edge{From: "seed-global", To: "consume-global", Scope: model.ScopeGlobal})

	o := &Orchestrator{
		Store: store.New(args, golang.GetLanguage()),
		Graph: g,
		Lang:  d,
		Rules: rules,
	}

	summaries, err := o.Run(context.Background(), []string{pathA, pathB})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byPath := map[string]string{}
	for _, s := range summaries {
		byPath[s.Path] = s.FinalText
	}
	assert.Contains(t, byPath[pathB], "noop()")
}
