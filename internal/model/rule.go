package model

import (
	"fmt"
	"strings"
)

// Tag groups rules for selective seeding, independent of ScopeTag — a rule
// can belong to one or more arbitrary tags (e.g. "cleanup", "flag-removal")
// used only to decide which rules seed a run.
type Tag string

// Rule is the template form loaded from configuration: its Query and
// ReplacementTemplate may still contain unresolved holes, and it has not
// yet been bound to any particular substitution environment.
type Rule struct {
	Name                Id
	Query               string
	ReplacementTemplate string
	// ReplaceNode is the capture name whose own range is replaced, rather
	// than the match's full captured span (spec.md §6's replace_node).
	// Empty means "replace the whole match".
	ReplaceNode CaptureName
	// Holes are capture names the rule expects to already be bound in the
	// substitution environment before instantiation (spec.md §3).
	Holes       map[CaptureName]struct{}
	IsSeed      bool
	Groups      map[Tag]struct{}
	Constraints []Constraint
}

// IsMatchOnly reports whether the rule changes no text — its replacement
// template is empty.
func (r Rule) IsMatchOnly() bool {
	return strings.TrimSpace(r.ReplacementTemplate) == ""
}

// InstantiatedRule is a Rule whose Query and ReplacementTemplate have had
// every known substitution textually interpolated.
type InstantiatedRule struct {
	Rule
}

// Instantiate interpolates subs into rule.Query and rule.ReplacementTemplate.
// It fails if any of rule.Holes is not present in subs — instantiation of
// an unbound hole is an error, not a silent no-op (spec.md §8).
func Instantiate(rule Rule, subs Substitutions) (InstantiatedRule, error) {
	for hole := range rule.Holes {
		if _, ok := subs[hole]; !ok {
			return InstantiatedRule{}, fmt.Errorf("rule %q: unbound hole %q at instantiation time", rule.Name, hole)
		}
	}
	instantiated := rule
	instantiated.Query = Interpolate(rule.Query, subs)
	instantiated.ReplacementTemplate = Interpolate(rule.ReplacementTemplate, subs)
	return InstantiatedRule{Rule: instantiated}, nil
}

// Interpolate textually substitutes every "@name" occurrence in template
// with its bound snippet from subs, leaving unbound names untouched (the
// caller is responsible for rejecting unbound holes before this point via
// Instantiate; Interpolate itself is also used for ad hoc constraint/scope
// query interpolation where no hole tracking applies).
func Interpolate(template string, subs Substitutions) string {
	if template == "" || len(subs) == 0 {
		return template
	}
	out := template
	for name, value := range subs {
		out = strings.ReplaceAll(out, string(name), value)
	}
	return out
}
