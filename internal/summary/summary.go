// Package summary builds the per-file Summary spec.md §6 says the core
// hands to its CLI/summary layer, and its unified-diff text. Field shape
// grounded verbatim on spec.md §6 ("preserves field names verbatim for
// tooling compatibility"); diff generation grounded on
// termfx-morfx/internal/util/file.go's UnifiedDiff (same "a/path"/"b/path"
// header convention, same --dry-run-friendly no-op when from == to), but
// built on go-difflib — already a teacher dependency
// (providers/base/provider.go imports it directly) — instead of the
// teacher's own hand-rolled hunk generator.
package summary

import (
	"encoding/json"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/piranha-go/piranha/internal/model"
	"github.com/piranha-go/piranha/internal/unit"
)

// Summary is one file's complete processing record.
type Summary struct {
	Path                string            `json:"path"`
	OriginalText        string            `json:"original_text"`
	FinalText           string            `json:"final_text"`
	Rewrites            []model.Edit      `json:"rewrites"`
	Matches             []NamedMatch      `json:"matches"`
	GlobalSubstitutions map[string]string `json:"global_substitutions"`
}

// NamedMatch pairs a match with the rule that produced it, the JSON shape
// spec.md §6 calls a "(rule_name, Match)" pair.
type NamedMatch struct {
	RuleName model.Id    `json:"rule_name"`
	Match    model.Match `json:"match"`
}

// FromUnit builds a Summary from a processed Unit. originalText is the
// file's content before any rule ran — the Unit itself only ever holds
// the current text, so the caller (internal/run) must capture it up
// front.
func FromUnit(u *unit.Unit, originalText string) Summary {
	matches := make([]NamedMatch, len(u.Matches))
	for i, m := range u.Matches {
		matches[i] = NamedMatch{RuleName: m.RuleName, Match: m.Match}
	}
	return Summary{
		Path:                u.Path,
		OriginalText:        originalText,
		FinalText:           string(u.Code),
		Rewrites:            append([]model.Edit(nil), u.Rewrites...),
		Matches:             matches,
		GlobalSubstitutions: u.GlobalSubstitutions(),
	}
}

// JSON marshals the summary with field names verbatim, per spec.md §6.
func (s Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Diff returns a unified diff between the original and final text, or ""
// if nothing changed.
func (s Summary) Diff(contextLines int) (string, error) {
	if s.OriginalText == s.FinalText {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(s.OriginalText),
		B:        difflib.SplitLines(s.FinalText),
		FromFile: "a/" + s.Path,
		ToFile:   "b/" + s.Path,
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(diff)
}
