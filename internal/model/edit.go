package model

import "strings"

// Id identifies a rule by name. Defined as its own type so the engine
// never confuses a rule name with an arbitrary string in a signature.
type Id string

// Edit is a planned or applied rewrite: the match it came from, the text
// that replaces the matched range, and the rule that produced it. Field
// shape mirrors the Rust `Edit` (crates/models/src/edit.rs): match +
// replacement + rule name, nothing else — ownership of an Edit always
// belongs to whichever SourceCodeUnit recorded it in its rewrite history.
type Edit struct {
	Match           Match
	ReplacementText string
	RuleName        Id
}

// IsDelete reports whether the edit removes text outright: its replacement
// is empty once surrounding whitespace is trimmed.
func (e Edit) IsDelete() bool {
	return strings.TrimSpace(e.ReplacementText) == ""
}

// Range is a shorthand for the edit's underlying match range, used when
// re-resolving a node after the tree has been re-parsed.
func (e Edit) Range() ByteRange { return e.Match.Range }
