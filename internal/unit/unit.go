// Package unit implements the Source Code Unit of spec.md §3: the per-file
// owner of the current text, tree, accumulated substitutions, and the
// history of rewrites/matches applied to it. Field shape is transcribed
// from original_source/src/models/source_code_unit.rs (ast, code,
// substitutions, path, rewrites, matches, piranha_arguments) into Go
// naming; re-parsing idiom follows the teacher's incremental-edit use of
// go-tree-sitter (internal/syntaxtree.Facade wraps ParseCtx/tree.Edit).
package unit

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/store"
	"github.com/piranha-go/piranha/internal/syntaxtree"
)

// Unit is one file's mutable state across a run.
type Unit struct {
	Path          string
	Code          []byte
	Args          store.Arguments
	Substitutions model.Substitutions
	Rewrites      []model.Edit
	Matches       []NamedMatch

	facade *syntaxtree.Facade
	tree   *sitter.Tree
}

// NamedMatch pairs a match-only rule's name with the match it produced
// (spec.md §3: "matches: Vec<(String, Match)>").
type NamedMatch struct {
	RuleName model.Id
	Match    model.Match
}

// New parses code and returns a Unit seeded with the run's input
// substitutions.
func New(ctx context.Context, facade *syntaxtree.Facade, path string, code []byte, args store.Arguments) (*Unit, error) {
	tree, err := facade.Parse(ctx, code, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Unit{
		Path:          path,
		Code:          code,
		Args:          args,
		Substitutions: args.InputSubstitutions.Clone(),
		facade:        facade,
		tree:          tree,
	}, nil
}

// Root returns the current root node of the file's tree.
func (u *Unit) Root() *sitter.Node { return u.facade.Root(u.tree) }

// Close releases the underlying tree-sitter tree.
func (u *Unit) Close() { u.tree.Close() }

// NodeForRange returns the smallest node fully spanning [start, end).
func (u *Unit) NodeForRange(start, end uint32) *sitter.Node {
	return u.facade.NodeForByteRange(u.Root(), start, end)
}

// ReplaceAndReparse installs newCode as the unit's text and incrementally
// re-parses from the prior tree (or from scratch if fromScratch is true),
// mirroring _replace_file_contents_and_re_parse.
func (u *Unit) ReplaceAndReparse(ctx context.Context, newCode []byte, fromScratch bool) error {
	var prior *sitter.Tree
	if !fromScratch {
		prior = u.tree
	}
	tree, err := u.facade.Parse(ctx, newCode, prior)
	if err != nil {
		return fmt.Errorf("re-parsing %s: %w", u.Path, err)
	}
	if fromScratch && u.tree != nil {
		u.tree.Close()
	}
	u.tree = tree
	u.Code = newCode
	return nil
}

// HasError reports whether the current tree contains a parse error —
// a syntactically broken rewrite is a programming error in the rule set,
// not a recoverable runtime condition (original: "panic!" on this check).
func (u *Unit) HasError() bool { return u.facade.HasError(u.Root()) }

// ExtendSubstitutions merges a match's captures into the unit's
// accumulated substitution table (monotonic growth per spec.md §4.2).
func (u *Unit) ExtendSubstitutions(captures model.Captures) {
	u.Substitutions.Extend(captures)
}

// GlobalSubstitutions returns the subset of accumulated substitutions
// whose key carries the run's global tag prefix (spec.md §6 Outputs).
func (u *Unit) GlobalSubstitutions() map[string]string {
	out := make(map[string]string)
	prefix := u.Args.GlobalTagPrefix
	for k, v := range u.Substitutions {
		if k.HasGlobalPrefix(prefix) {
			out[string(k)] = v
		}
	}
	return out
}

// ApplyTreeEdit mirrors ast.edit(&ts_edit): applies the tree-sitter
// incremental edit in place on the current tree before re-parsing.
func (u *Unit) ApplyTreeEdit(e syntaxtree.TreeEdit) {
	syntaxtree.Apply(u.tree, e)
}
