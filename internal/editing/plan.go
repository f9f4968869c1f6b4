package editing

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
	"github.com/piranha-go/piranha/internal/store"
)

// PlanEdit implements spec.md §4.6's plan_edit: evaluates rule's
// instantiated query against scopeNode (recursive), takes the first match
// by byte order whose constraints are satisfied, interpolates the
// replacement template with the match's captures plus subs, and returns
// the resulting Edit. Returns ok=false if no satisfying match exists.
func PlanEdit(
	s *store.Store, scopeNode *sitter.Node, source []byte, rule model.InstantiatedRule, subs model.Substitutions,
) (model.Edit, bool, error) {
	q, err := s.Query(rule.Query)
	if err != nil {
		return model.Edit{}, false, err
	}

	for _, m := range query.Evaluate(q, scopeNode, source, true) {
		node := scopeNode.DescendantForByteRange(m.Range.StartByte, m.Range.EndByte)
		merged := subs.Merge(Captures2Subs(m.Captures))
		ok, err := IsSatisfied(s, node, rule.Rule, merged, source)
		if err != nil {
			return model.Edit{}, false, err
		}
		if !ok {
			continue
		}
		narrowed := m
		narrowed.Range = m.RangeFor(rule.ReplaceNode)
		return model.Edit{
			Match:           narrowed,
			ReplacementText: model.Interpolate(rule.ReplacementTemplate, merged),
			RuleName:        rule.Name,
		}, true, nil
	}
	return model.Edit{}, false, nil
}

// PlanMatches implements spec.md §4.6's plan_matches: for match-only
// rules, returns every match under scopeNode (in byte order) whose
// constraints pass.
func PlanMatches(
	s *store.Store, scopeNode *sitter.Node, source []byte, rule model.InstantiatedRule, subs model.Substitutions,
) ([]model.Match, error) {
	q, err := s.Query(rule.Query)
	if err != nil {
		return nil, err
	}

	var out []model.Match
	for _, m := range query.Evaluate(q, scopeNode, source, true) {
		node := scopeNode.DescendantForByteRange(m.Range.StartByte, m.Range.EndByte)
		merged := subs.Merge(Captures2Subs(m.Captures))
		ok, err := IsSatisfied(s, node, rule.Rule, merged, source)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Captures2Subs views a match's captures as a Substitutions overlay, for
// merging into the ambient environment before constraint evaluation and
// template interpolation.
func Captures2Subs(c model.Captures) model.Substitutions {
	out := make(model.Substitutions, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
