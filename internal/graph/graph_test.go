package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piranha-go/piranha/internal/model"
)

func TestGraph_SuccessorsPreserveDeclarationOrder(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: "r1", To: "r2", Scope: model.ScopeParent})
	g.AddEdge(Edge{From: "r1", To: "r3", Scope: model.ScopeParent})
	g.AddEdge(Edge{From: "r1", To: "r4", Scope: model.ScopeGlobal})

	succ := g.Successors("r1", model.ScopeParent, nil)
	assert.Equal(t, []model.Id{"r2", "r3"}, ids(succ))
}

func TestGraph_GatedEdgeFiltered(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: "r1", To: "r2", Scope: model.ScopeParent, Gate: func(s model.Substitutions) bool {
		return s["@FLAG"] == "on"
	}})

	assert.Empty(t, g.Successors("r1", model.ScopeParent, model.Substitutions{}))
	assert.Len(t, g.Successors("r1", model.ScopeParent, model.Substitutions{"@FLAG": "on"}), 1)
}

func TestGraph_Seeds(t *testing.T) {
	g := New()
	g.AddSeed("r1")
	g.AddSeed("r2")
	assert.Equal(t, []model.Id{"r1", "r2"}, g.Seeds())
}

func ids(edges []Edge) []model.Id {
	out := make([]model.Id, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}
