// Package engine implements the Rewrite Engine / Propagator of spec.md
// §4.8–§4.11: the fixed-point per-rule application loop, Parent-scope
// ancestor-walk cleanup, Method/Class/custom-scope queueing, and Global
// seeding. Grounded structurally on
// _examples/original_source/src/models/source_code_unit.rs's
// apply_rule/_apply_rule/propagate trio, rebuilt against this module's own
// editing/scope/graph/store packages instead of tree_sitter_rs.
package engine

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/editing"
	"github.com/piranha-go/piranha/internal/graph"
	"github.com/piranha-go/piranha/internal/lang"
	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
	"github.com/piranha-go/piranha/internal/scope"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/unit"
)

// Engine runs rules against one Unit, sharing a Store and Graph across the
// whole run.
type Engine struct {
	Store *store.Store
	Graph *graph.Graph
	Lang  lang.Descriptor
	Rules map[model.Id]model.Rule
	Unit  *unit.Unit
}

// scopeSpec freezes the scope tag and anchor range a queued rule should
// resolve against — spec.md §4.4/§4.9: the anchor is fixed at queue time,
// re-resolved against the (possibly since-mutated) tree on each loop turn.
type scopeSpec struct {
	tag        string
	start, end uint32
}

func (e *Engine) resolveScope(spec *scopeSpec) *sitter.Node {
	if spec == nil || spec.tag == "" {
		return e.Unit.Root()
	}
	node, ok, err := scope.Resolve(e.Store, e.Lang, spec.tag, e.Unit.Root(), e.Unit.Code, spec.start, spec.end)
	if err != nil || !ok {
		return e.Unit.Root()
	}
	return node
}

// ApplyRules runs every rule in rules, in order, to its own fixed point
// against the file root, then — when DeleteConsecutiveNewLines is set —
// collapses consecutive blank lines (spec.md §4.11's "after all requested
// rules" step).
func (e *Engine) ApplyRules(ctx context.Context, rules []model.InstantiatedRule) error {
	for _, r := range rules {
		if err := e.ApplyRule(ctx, r, nil); err != nil {
			return err
		}
	}
	if !e.Unit.Args.DeleteConsecutiveNewLines {
		return nil
	}
	return e.collapseBlankLines(ctx)
}

// ApplyRule implements spec.md §4.11's apply_rule: repeat plan/apply/
// propagate until the rule (rewrite) stops matching, or — for a
// match-only rule — visit every current match once.
func (e *Engine) ApplyRule(ctx context.Context, rule model.InstantiatedRule, spec *scopeSpec) error {
	for {
		scopeNode := e.resolveScope(spec)

		if rule.IsMatchOnly() {
			matches, err := editing.PlanMatches(e.Store, scopeNode, e.Unit.Code, rule, e.Unit.Substitutions)
			if err != nil {
				return err
			}
			for _, m := range matches {
				e.Unit.Matches = append(e.Unit.Matches, unit.NamedMatch{RuleName: rule.Name, Match: m})
				e.Unit.ExtendSubstitutions(m.Captures)
				if err := e.propagate(ctx, m.Range, rule); err != nil {
					return err
				}
			}
			return nil
		}

		edit, ok, err := editing.PlanEdit(e.Store, scopeNode, e.Unit.Code, rule, e.Unit.Substitutions)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		e.Unit.Rewrites = append(e.Unit.Rewrites, edit)
		e.Unit.ExtendSubstitutions(edit.Match.Captures)

		_, newRange, err := editing.Apply(ctx, e.Unit, edit)
		if err != nil {
			return err
		}

		if err := e.propagate(ctx, newRange, rule); err != nil {
			return err
		}
		// loop: the tree changed, re-resolve scope and try again
	}
}

type queuedRule struct {
	spec scopeSpec
	rule model.InstantiatedRule
}

// propagate implements spec.md §4.8–§4.10: ascend the Parent chain
// applying the first successor that fires at each step, queue Method/
// Class/custom-scope successors along the way, and seed Global successors
// into the Rule Store.
func (e *Engine) propagate(ctx context.Context, replaceRange model.ByteRange, rule model.InstantiatedRule) error {
	currentRange := replaceRange
	currentRuleName := rule.Name
	var stack []queuedRule // push front; dequeue front-first (LIFO)

	for {
		nextEdges := e.Graph.AllSuccessors(currentRuleName, e.Unit.Substitutions)

		var parentEdges []graph.Edge
		for _, edge := range nextEdges {
			switch edge.Scope {
			case model.ScopeGlobal:
				if def, ok := e.Rules[edge.To]; ok {
					e.Store.AddGlobal(def)
				}
			case model.ScopeParent:
				parentEdges = append(parentEdges, edge)
			default:
				item, ok, err := e.buildQueuedRule(edge, currentRange)
				if err != nil {
					return err
				}
				if ok {
					stack = append([]queuedRule{item}, stack...)
				}
			}
		}

		edit, newRuleName, found, err := e.findParentEdit(currentRange, parentEdges)
		if err != nil {
			return err
		}
		if !found {
			break
		}

		e.Unit.Rewrites = append(e.Unit.Rewrites, edit)
		_, newRange, err := editing.Apply(ctx, e.Unit, edit)
		if err != nil {
			return err
		}
		e.Unit.ExtendSubstitutions(edit.Match.Captures)
		currentRange = newRange
		currentRuleName = newRuleName
	}

	for _, item := range stack {
		if err := e.ApplyRule(ctx, item.rule, &item.spec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) buildQueuedRule(edge graph.Edge, currentRange model.ByteRange) (queuedRule, bool, error) {
	if _, ok := e.Lang.ScopeTemplateFor(string(edge.Scope)); !ok {
		return queuedRule{}, false, fmt.Errorf("unknown scope tag %q for language %q", edge.Scope, e.Lang.Name)
	}
	def, ok := e.Rules[edge.To]
	if !ok {
		return queuedRule{}, false, nil
	}
	instantiated, err := model.Instantiate(def, e.Unit.Substitutions)
	if err != nil {
		return queuedRule{}, false, err
	}
	return queuedRule{
		spec: scopeSpec{tag: string(edge.Scope), start: currentRange.StartByte, end: currentRange.EndByte},
		rule: instantiated,
	}, true, nil
}

// findParentEdit implements spec.md §4.8: for each Parent-scoped successor
// in declaration order, walk ancestors of the node at currentRange
// nearest-first, up to PiranhaArguments.NumberOfAncestorsInParentScope
// hops (0 means unbounded); the first ancestor where the successor's
// (instantiated) query matches exactly and constraints pass wins. The
// first successor that fires at all stops the search — later successors
// are never tried.
func (e *Engine) findParentEdit(
	currentRange model.ByteRange, edges []graph.Edge,
) (model.Edit, model.Id, bool, error) {
	anchor := e.Unit.NodeForRange(currentRange.StartByte, currentRange.EndByte)
	if anchor == nil {
		return model.Edit{}, "", false, nil
	}

	for _, edge := range edges {
		def, ok := e.Rules[edge.To]
		if !ok {
			continue
		}
		instantiated, err := model.Instantiate(def, e.Unit.Substitutions)
		if err != nil {
			return model.Edit{}, "", false, err
		}

		q, err := e.Store.Query(instantiated.Query)
		if err != nil {
			return model.Edit{}, "", false, err
		}

		maxHops := e.Store.Args().NumberOfAncestorsInParentScope
		for ancestor, hops := anchor, 0; ancestor != nil && (maxHops <= 0 || hops <= maxHops); ancestor, hops = ancestor.Parent(), hops+1 {
			m, ok := query.GetFirst(q, ancestor, e.Unit.Code, false)
			if !ok {
				continue
			}
			node := e.Unit.Root().DescendantForByteRange(m.Range.StartByte, m.Range.EndByte)
			merged := e.Unit.Substitutions.Merge(editing.Captures2Subs(m.Captures))
			satisfied, err := editing.IsSatisfied(e.Store, node, instantiated.Rule, merged, e.Unit.Code)
			if err != nil {
				return model.Edit{}, "", false, err
			}
			if !satisfied {
				continue
			}
			ed := model.Edit{
				Match:           m,
				ReplacementText: model.Interpolate(instantiated.ReplacementTemplate, merged),
				RuleName:        instantiated.Name,
			}
			return ed, instantiated.Name, true, nil
		}
	}
	return model.Edit{}, "", false, nil
}
