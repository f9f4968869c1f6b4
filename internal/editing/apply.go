package editing

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/syntaxtree"
	"github.com/piranha-go/piranha/internal/unit"
)

// Apply implements spec.md §4.7: absorbs a neighboring comma into a delete
// edit, splices the result into the unit's text and tree, re-parses, gates
// on syntactic validity, and — for deletes, when cleanup_comments is
// enabled — absorbs an associated leading comment as a second edit. It
// returns the Edit actually applied (which may differ from e after
// absorption) together with the edit's *new* range — [start_byte,
// new_end_byte) in the post-splice text — which is what propagation
// (spec.md §4.8) walks ancestors from, not the original match range.
func Apply(ctx context.Context, u *unit.Unit, e model.Edit) (model.Edit, model.ByteRange, error) {
	applied := e
	if applied.IsDelete() {
		applied = absorbNeighborComma(u, applied)
	}

	newRange, err := spliceAndReparse(ctx, u, applied)
	if err != nil {
		return model.Edit{}, model.ByteRange{}, err
	}
	if u.HasError() {
		return model.Edit{}, model.ByteRange{}, fmt.Errorf(
			"produced syntactically incorrect source code for %s:\n%s", u.Path, string(u.Code))
	}

	if applied.IsDelete() && u.Args.CleanupComments {
		if commentEdit, ok := deleteAssociatedComment(ctx, u, applied); ok {
			commentRange, err := spliceAndReparse(ctx, u, commentEdit)
			if err != nil {
				return model.Edit{}, model.ByteRange{}, err
			}
			if u.HasError() {
				return model.Edit{}, model.ByteRange{}, fmt.Errorf(
					"produced syntactically incorrect source code for %s:\n%s", u.Path, string(u.Code))
			}
			return commentEdit, commentRange, nil
		}
	}
	return applied, newRange, nil
}

// spliceAndReparse builds the structured TreeEdit, applies it to the tree
// first so the parser can reuse unchanged subtrees, splices the
// replacement text into the buffer, then incrementally re-parses — spec.md
// §4.7 step 2's ordering.
func spliceAndReparse(ctx context.Context, u *unit.Unit, e model.Edit) (model.ByteRange, error) {
	startByte := e.Match.Range.StartByte
	oldEndByte := e.Match.Range.EndByte
	newEndByte := startByte + uint32(len(e.ReplacementText))
	newEndPoint := advancedPoint(e.Match.Range.StartPoint, e.ReplacementText)

	treeEdit := syntaxtree.TreeEdit{
		StartByte:   startByte,
		OldEndByte:  oldEndByte,
		NewEndByte:  newEndByte,
		StartPoint:  toSitterPoint(e.Match.Range.StartPoint),
		OldEndPoint: toSitterPoint(e.Match.Range.EndPoint),
		NewEndPoint: newEndPoint,
	}
	u.ApplyTreeEdit(treeEdit)

	newCode := splice(u.Code, startByte, oldEndByte, []byte(e.ReplacementText))
	if err := u.ReplaceAndReparse(ctx, newCode, false); err != nil {
		return model.ByteRange{}, err
	}
	return model.ByteRange{
		StartByte:  startByte,
		EndByte:    newEndByte,
		StartPoint: e.Match.Range.StartPoint,
		EndPoint:   model.Point{Row: newEndPoint.Row, Column: newEndPoint.Column},
	}, nil
}

func splice(src []byte, start, end uint32, repl []byte) []byte {
	out := make([]byte, 0, len(src)-int(end-start)+len(repl))
	out = append(out, src[:start]...)
	out = append(out, repl...)
	out = append(out, src[end:]...)
	return out
}

func toSitterPoint(p model.Point) sitter.Point {
	return sitter.Point{Row: p.Row, Column: p.Column}
}

// advancedPoint computes the end point of replacement text starting at
// start, accounting for embedded newlines.
func advancedPoint(start model.Point, replacement string) sitter.Point {
	row, col := start.Row, start.Column
	for _, r := range replacement {
		if r == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return sitter.Point{Row: row, Column: col}
}

// absorbNeighborComma implements spec.md §4.7 step 1: widen a delete edit
// to absorb a trailing comma, or failing that a leading comma, leaving the
// edit unchanged if neither neighbor is a comma.
func absorbNeighborComma(u *unit.Unit, e model.Edit) model.Edit {
	r := e.Match.Range

	if next, ok := trailingComma(u, r.EndByte); ok {
		r.EndByte = next.EndByte()
		r.EndPoint = model.Point{Row: next.EndPoint().Row, Column: next.EndPoint().Column}
		return rebuild(e, r)
	}
	if prev, ok := leadingComma(u, r.StartByte); ok {
		r.StartByte = prev.StartByte()
		r.StartPoint = model.Point{Row: prev.StartPoint().Row, Column: prev.StartPoint().Column}
		return rebuild(e, r)
	}
	return e
}

func rebuild(e model.Edit, r model.ByteRange) model.Edit {
	e.Match.Range = r
	return e
}

// trailingComma finds the node immediately after endByte, walks its
// parent's children post-order, and returns the node with the smallest
// non-negative start-byte offset from endByte if its trimmed text is ",".
func trailingComma(u *unit.Unit, endByte uint32) (*sitter.Node, bool) {
	anchor := u.NodeForRange(endByte, endByte+1)
	if anchor == nil {
		return nil, false
	}
	parent := anchor.Parent()
	if parent == nil {
		return nil, false
	}

	var best *sitter.Node
	walkPostOrder(parent, func(n *sitter.Node) {
		if n.StartByte() < endByte {
			return
		}
		if best == nil || n.StartByte() < best.StartByte() {
			best = n
		}
	})
	if best == nil || !isComma(best, u.Code) {
		return nil, false
	}
	return best, true
}

// leadingComma mirrors trailingComma on the side before startByte.
func leadingComma(u *unit.Unit, startByte uint32) (*sitter.Node, bool) {
	probeEnd := startByte
	if startByte > 0 {
		probeEnd = startByte - 1
	}
	anchor := u.NodeForRange(probeEnd, startByte)
	if anchor == nil {
		return nil, false
	}
	parent := anchor.Parent()
	if parent == nil {
		return nil, false
	}

	var best *sitter.Node
	walkPostOrder(parent, func(n *sitter.Node) {
		if n.EndByte() > startByte {
			return
		}
		if best == nil || n.EndByte() > best.EndByte() {
			best = n
		}
	})
	if best == nil || !isComma(best, u.Code) {
		return nil, false
	}
	return best, true
}

func isComma(n *sitter.Node, source []byte) bool {
	return strings.TrimSpace(n.Content(source)) == ","
}

// walkPostOrder visits every descendant of n (n included) in post-order.
func walkPostOrder(n *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		walkPostOrder(n.Child(i), visit)
	}
	visit(n)
}

// deleteAssociatedComment implements spec.md §4.7 step 4: if the line
// immediately preceding the deletion's original start line is, at its
// root-level expression, a comment ending within cleanup_comments_buffer
// lines, returns a second delete Edit covering that comment.
func deleteAssociatedComment(_ context.Context, u *unit.Unit, applied model.Edit) (model.Edit, bool) {
	buffer := u.Args.CleanupCommentsBuffer
	if buffer <= 0 {
		return model.Edit{}, false
	}

	deletionStartRow := applied.Match.Range.StartPoint.Row
	if deletionStartRow == 0 {
		return model.Edit{}, false
	}
	precedingRow := deletionStartRow - 1

	root := u.Root()
	comment := findRootLevelCommentOnRow(root, precedingRow)
	if comment == nil {
		return model.Edit{}, false
	}
	if int(deletionStartRow)-int(comment.EndPoint().Row) > buffer {
		return model.Edit{}, false
	}

	return model.Edit{
		Match: model.Match{
			Range: model.ByteRange{
				StartByte:  comment.StartByte(),
				EndByte:    comment.EndByte(),
				StartPoint: model.Point{Row: comment.StartPoint().Row, Column: comment.StartPoint().Column},
				EndPoint:   model.Point{Row: comment.EndPoint().Row, Column: comment.EndPoint().Column},
			},
			Captures: applied.Match.Captures.Clone(),
		},
		ReplacementText: "",
		RuleName:        applied.RuleName,
	}, true
}

// findRootLevelCommentOnRow returns the shallowest comment node starting on
// row — i.e. the "root-level expression" of that line, not nested inside
// some other node that itself starts on the same row. BFS order guarantees
// the first match found is the shallowest.
func findRootLevelCommentOnRow(root *sitter.Node, row uint32) *sitter.Node {
	queue := []*sitter.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.StartPoint().Row == row && strings.Contains(n.Type(), "comment") {
			return n
		}
		if n.StartPoint().Row > row {
			continue
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			queue = append(queue, n.Child(i))
		}
	}
	return nil
}
