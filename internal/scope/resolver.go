// Package scope implements the Scope Resolver of spec.md §4.4: given a
// scope tag and an anchor byte range, it locates the smallest enclosing
// scope of that tag in the current tree. The mapping from tag to query
// template is data supplied by internal/lang — this package only knows how
// to bind the template's holes and run the resulting query, the same
// table-driven indirection the teacher's NodeMapping.Template uses.
package scope

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/piranha-go/piranha/internal/lang"
	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/query"
	"github.com/piranha-go/piranha/internal/store"
)

// Resolve finds the smallest node of scope tag `tag` enclosing [start,end)
// within root, using the language descriptor's scope template and the
// store's query cache. It returns (nil, false) if no such scope exists —
// the caller treats "no scope" as falling back to the file root (spec.md
// §4.11: "scope_node := resolve_scope(scope_query) else root") — and an
// error if the tag is not configured for this language.
func Resolve(
	s *store.Store, d lang.Descriptor, tag string, root *sitter.Node, source []byte, start, end uint32,
) (*sitter.Node, bool, error) {
	tmpl, ok := d.ScopeTemplateFor(tag)
	if !ok {
		return nil, false, fmt.Errorf("unknown scope tag %q for language %q", tag, d.Name)
	}

	text := bindHoles(tmpl.Template, start, end)
	q, err := s.Query(text)
	if err != nil {
		return nil, false, fmt.Errorf("scope query for tag %q: %w", tag, err)
	}

	best := smallestEnclosing(query.Evaluate(q, root, source, true), start, end)
	if best == nil {
		return nil, false, nil
	}
	node := root.DescendantForByteRange(best.Range.StartByte, best.Range.EndByte)
	return node, node != nil, nil
}

// bindHoles interpolates the `n0.start_byte`/`n0.end_byte` holes spec.md §6
// names, with the current anchor range.
func bindHoles(template string, start, end uint32) string {
	r := strings.NewReplacer(
		"n0.start_byte", strconv.FormatUint(uint64(start), 10),
		"n0.end_byte", strconv.FormatUint(uint64(end), 10),
	)
	return r.Replace(template)
}

// smallestEnclosing returns the match with the smallest byte span among
// those that fully cover [start, end), or nil if none does.
func smallestEnclosing(matches []model.Match, start, end uint32) *model.Match {
	var best *model.Match
	for i := range matches {
		m := &matches[i]
		if !m.Range.Contains(start, end) {
			continue
		}
		if best == nil || m.Range.Len() < best.Range.Len() {
			best = m
		}
	}
	return best
}
