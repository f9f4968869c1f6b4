// Package editing implements the Edit Planner & Applier of spec.md
// §4.5–§4.7: constraint satisfaction, computing the concrete text edit for
// a rewrite (with comma/comment absorption), and applying it incrementally
// to both text and tree. Grounded on termfx-morfx/internal/core/pipeline.go
// (planEdits/applyEdits byte-range shape) and manipulator.go (applyMatches
// reverse-order splice); comma/comment absorption has no teacher precedent
// and is built fresh in the teacher's own child-walk idiom.
package editing

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
	"github.com/piranha-go/piranha/internal/store"
)

// IsSatisfied implements spec.md §4.5's is_satisfied: interpolates subs as
// given (callers pass the unit's substitutions, which already hold the
// input substitutions, merged with the match's captures), then for each
// constraint walks the parents of
// node.first_child() (or of node itself if it has no children) — never the
// starting node itself — looking for the first ancestor matching the
// constraint's (interpolated) Matcher query. If found, none of
// ForbiddenQueries may match anywhere within that ancestor's subtree. The
// walk exhausting without a matching ancestor is a constraint failure —
// there is no second chance once an ancestor is picked for testing.
func IsSatisfied(
	s *store.Store, node *sitter.Node, rule model.Rule, subs model.Substitutions, source []byte,
) (bool, error) {
	for _, c := range rule.Constraints {
		ok, err := constraintSatisfied(s, node, c, subs, source)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func constraintSatisfied(
	s *store.Store, node *sitter.Node, c model.Constraint, subs model.Substitutions, source []byte,
) (bool, error) {
	matcherText := model.Interpolate(c.Matcher, subs)
	matcherQuery, err := s.Query(matcherText)
	if err != nil {
		return false, err
	}

	start := node
	if start.ChildCount() > 0 {
		start = start.Child(0)
	}

	for ancestor := start.Parent(); ancestor != nil; ancestor = ancestor.Parent() {
		if _, ok := query.GetFirst(matcherQuery, ancestor, source, false); !ok {
			continue
		}
		// Nearest matching ancestor found: test it, win or lose, no retry.
		for _, fq := range c.ForbiddenQueries {
			forbidden, err := s.Query(model.Interpolate(fq, subs))
			if err != nil {
				return false, err
			}
			if _, found := query.GetFirst(forbidden, ancestor, source, true); found {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}
