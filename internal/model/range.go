// Package model holds the pure data structures of the rewrite engine: byte
// ranges, matches, edits, rules, constraints and the substitution
// environment threaded through a file's processing. Nothing in this package
// depends on tree-sitter or any other external collaborator. Its methods
// and functions (Merge, Extend, Instantiate, Interpolate and the like) work
// on these values alone.
package model

import "fmt"

// Point is a row/column position within a source file, both zero-based.
type Point struct {
	Row    uint32
	Column uint32
}

// ByteRange is a half-open byte span [Start, End) plus its row/column
// endpoints, following spec.md's ByteRange shape exactly.
type ByteRange struct {
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
}

// Len returns the number of bytes the range covers.
func (r ByteRange) Len() int {
	return int(r.EndByte) - int(r.StartByte)
}

// Contains reports whether r fully covers [start, end).
func (r ByteRange) Contains(start, end uint32) bool {
	return r.StartByte <= start && end <= r.EndByte
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.StartByte, r.EndByte)
}
