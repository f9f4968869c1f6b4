// Package query compiles and evaluates structural queries (tree-sitter
// queries under the hood) and returns deterministic, pre-order Match
// values. Grounded on the teacher's internal/matcher/tree.go ASTMatcher.Find
// and internal/core/pipeline.go selectAnchors, generalized from a single
// "@target" capture convention to arbitrary named captures, since the
// engine's Match.Captures must carry every capture a rule's query defines
// (spec.md §3), not just one anchor.
package query

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
)

// Query is a compiled structural pattern over syntax trees.
type Query struct {
	raw  string
	lang *sitter.Language
	q    *sitter.Query
}

// Compile parses the given tree-sitter query text against lang.
func Compile(text string, lang *sitter.Language) (*Query, error) {
	q, err := sitter.NewQuery([]byte(text), lang)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", text, err)
	}
	return &Query{raw: text, lang: lang, q: q}, nil
}

// Text returns the query's original source text, used as the Rule Store's
// cache key.
func (q *Query) Text() string { return q.raw }

// Close releases the compiled query's native resources.
func (q *Query) Close() {
	if q.q != nil {
		q.q.Close()
	}
}

// Evaluate runs the query against node — anywhere in its subtree when
// recursive is true, or only matches rooted at node itself when false —
// and returns matches in pre-order of their anchor byte (spec.md §4.2).
func Evaluate(q *Query, node *sitter.Node, source []byte, recursive bool) []model.Match {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q.q, node)

	var matches []model.Match
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		m = cursor.FilterPredicates(m, source)
		if len(m.Captures) == 0 {
			continue
		}
		anchor := m.Captures[0].Node
		if !recursive && !sameSpan(anchor, node) {
			// Non-recursive evaluation only accepts a match whose anchor
			// node IS the requested node, not merely somewhere beneath it.
			continue
		}
		captures := make(model.Captures, len(m.Captures))
		captureRanges := make(map[model.CaptureName]model.ByteRange, len(m.Captures))
		minStart := anchor.StartByte()
		maxEnd := anchor.EndByte()
		for _, c := range m.Captures {
			name := model.CaptureName("@" + q.q.CaptureNameForId(c.Index))
			captures[name] = c.Node.Content(source)
			captureRanges[name] = model.ByteRange{
				StartByte:  c.Node.StartByte(),
				EndByte:    c.Node.EndByte(),
				StartPoint: toPoint(c.Node.StartPoint()),
				EndPoint:   toPoint(c.Node.EndPoint()),
			}
			if c.Node.StartByte() < minStart {
				minStart = c.Node.StartByte()
			}
			if c.Node.EndByte() > maxEnd {
				maxEnd = c.Node.EndByte()
			}
		}
		matches = append(matches, model.Match{
			Range: model.ByteRange{
				StartByte:  minStart,
				EndByte:    maxEnd,
				StartPoint: toPoint(anchor.StartPoint()),
				EndPoint:   toPoint(anchor.EndPoint()),
			},
			Captures:      captures,
			CaptureRanges: captureRanges,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartByte() < matches[j].StartByte()
	})
	return matches
}

// GetFirst returns the first match under Evaluate's ordering, or false if
// there are none.
func GetFirst(q *Query, node *sitter.Node, source []byte, recursive bool) (model.Match, bool) {
	matches := Evaluate(q, node, source, recursive)
	if len(matches) == 0 {
		return model.Match{}, false
	}
	return matches[0], true
}

// sameSpan reports whether a and b cover the identical byte range —
// tree-sitter node wrappers are not guaranteed to be pointer-identical
// across separate accessors, so span equality is the reliable test for
// "is this the same node".
func sameSpan(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func toPoint(p sitter.Point) model.Point {
	return model.Point{Row: p.Row, Column: p.Column}
}
