// Package graph implements the Rule Graph of spec.md §3/§4: a directed
// multigraph whose nodes are rule names and whose edges are labeled by a
// scope tag and optionally gated by a substitution-dependent predicate. No
// teacher analogue exists (morfx applies one rule at a time); this is
// modeled in the teacher's own data-modeling idiom — typed constants plus
// slice-valued maps, the same shape internal/model/scope.go uses for
// enumerations — since no graph library appears anywhere in the example
// pack to justify pulling one in.
package graph

import "github.com/piranha-go/piranha/internal/model"

// Predicate gates whether an edge is live for the current substitution
// environment (spec.md §3: "An edge may carry a substitution-dependent
// predicate").
type Predicate func(subs model.Substitutions) bool

// Edge is one successor relationship: apply `To` in scope `Scope` after
// `From` fires, provided Gate (if set) holds.
type Edge struct {
	From  model.Id
	To    model.Id
	Scope model.ScopeTag
	Gate  Predicate
}

// Graph is the directed multigraph of rule successors, keyed by the rule
// that just fired. Edges for one `From` preserve declaration order —
// spec.md §4.8/§5 require deterministic successor selection in that order.
type Graph struct {
	edges map[model.Id][]Edge
	seeds []model.Id
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[model.Id][]Edge)}
}

// AddEdge appends an edge, preserving insertion order among edges sharing
// the same From.
func (g *Graph) AddEdge(e Edge) {
	g.edges[e.From] = append(g.edges[e.From], e)
}

// AddSeed marks a rule as part of the initial frontier — applicable
// without an incoming edge (spec.md glossary: "Seed rule").
func (g *Graph) AddSeed(name model.Id) {
	g.seeds = append(g.seeds, name)
}

// Seeds returns the rules forming the initial frontier, in the order they
// were added.
func (g *Graph) Seeds() []model.Id {
	out := make([]model.Id, len(g.seeds))
	copy(out, g.seeds)
	return out
}

// Successors returns the live edges out of `from` whose Scope equals tag,
// in declaration order, filtering out edges whose Gate does not hold for
// subs (a nil Gate is always live).
func (g *Graph) Successors(from model.Id, tag model.ScopeTag, subs model.Substitutions) []Edge {
	var out []Edge
	for _, e := range g.edges[from] {
		if e.Scope != tag {
			continue
		}
		if e.Gate != nil && !e.Gate(subs) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AllSuccessors returns every live edge out of `from` regardless of scope
// tag, in declaration order — used by the propagator to bucket successors
// by tag for a single Parent-loop iteration (spec.md §4.9).
func (g *Graph) AllSuccessors(from model.Id, subs model.Substitutions) []Edge {
	var out []Edge
	for _, e := range g.edges[from] {
		if e.Gate != nil && !e.Gate(subs) {
			continue
		}
		out = append(out, e)
	}
	return out
}
