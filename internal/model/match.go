package model

// CaptureName is the name bound to a capture in a structural query, e.g.
// "@name" in a tree-sitter query pattern.
type CaptureName string

// Captures maps capture name to the exact source text the capture spanned.
// Keys are unique; iteration order is never significant.
type Captures map[CaptureName]string

// Clone returns a shallow copy safe to mutate independently of the original.
func (c Captures) Clone() Captures {
	out := make(Captures, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Match is a single structural hit: the byte range it covers plus whatever
// it captured by name.
type Match struct {
	Range    ByteRange
	Captures Captures
	// CaptureRanges holds each capture's own byte range, keyed the same as
	// Captures. Range is the union of every capture in the match; a rule
	// with a replace_node (spec.md §6) narrows the replaced span to one of
	// these instead.
	CaptureRanges map[CaptureName]ByteRange
}

// RangeFor returns the byte range of the named capture if present, else
// the match's overall Range.
func (m Match) RangeFor(name CaptureName) ByteRange {
	if name == "" {
		return m.Range
	}
	if r, ok := m.CaptureRanges[name]; ok {
		return r
	}
	return m.Range
}

// StartByte is a convenience accessor used throughout the engine for
// ordering matches by anchor position.
func (m Match) StartByte() uint32 { return m.Range.StartByte }
