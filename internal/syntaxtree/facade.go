// Package syntaxtree wraps the incremental tree-sitter parser behind the
// handful of operations the rest of the engine needs: parse, re-parse with
// a prior tree (so unchanged subtrees are reused), and node lookup by byte
// range. Grounded on the teacher's own parser construction in
// internal/matcher/tree.go and internal/core/pipeline.go, generalized from
// a single one-shot parse to the incremental re-parse spec.md §4.1 and §4.7
// require after every edit.
package syntaxtree

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Facade owns the *sitter.Parser for one language and exposes the parse
// operations the rest of the engine is allowed to perform. A Facade is not
// safe for concurrent use — each goroutine processing a file owns its own
// Facade, matching the single-threaded-per-file contract of spec.md §5.
type Facade struct {
	parser *sitter.Parser
	lang   *sitter.Language
}

// New builds a Facade for the given tree-sitter grammar.
func New(lang *sitter.Language) *Facade {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Facade{parser: p, lang: lang}
}

// Parse parses text from scratch. If prior is non-nil, the parser reuses
// whatever subtrees of prior are still valid for text — callers must have
// already applied a matching Edit to prior via TreeEdit for reuse to occur.
func (f *Facade) Parse(ctx context.Context, text []byte, prior *sitter.Tree) (*sitter.Tree, error) {
	tree, err := f.parser.ParseCtx(ctx, prior, text)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return tree, nil
}

// Root returns the tree's root node.
func (f *Facade) Root(tree *sitter.Tree) *sitter.Node {
	root := tree.RootNode()
	return root
}

// HasError reports whether the tree contains any error node anywhere in
// its subtree — the validity gate spec.md §4.1 and §4.7 require after
// every rewrite step.
func (f *Facade) HasError(root *sitter.Node) bool {
	return root.HasError()
}

// NodeForByteRange returns the smallest node fully covering [start, end).
func (f *Facade) NodeForByteRange(root *sitter.Node, start, end uint32) *sitter.Node {
	return root.DescendantForByteRange(start, end)
}

// TreeEdit records a planned incremental edit in tree-sitter's own shape,
// used both to advance a *sitter.Tree before re-parsing and to describe
// the same edit in byte/point terms for the Edit Applier.
type TreeEdit struct {
	StartByte   uint32
	OldEndByte  uint32
	NewEndByte  uint32
	StartPoint  sitter.Point
	OldEndPoint sitter.Point
	NewEndPoint sitter.Point
}

// Apply advances tree in place to reflect e, so the next Parse call can
// reuse unaffected subtrees.
func Apply(tree *sitter.Tree, e TreeEdit) {
	tree.Edit(sitter.EditInput{
		StartIndex:  e.StartByte,
		OldEndIndex: e.OldEndByte,
		NewEndIndex: e.NewEndByte,
		StartPoint:  e.StartPoint,
		OldEndPoint: e.OldEndPoint,
		NewEndPoint: e.NewEndPoint,
	})
}
