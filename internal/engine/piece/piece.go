// Package piece defines the Piece value type: a description of a slice
// of one buffer in the buffer pool, plus the metadata and derived
// classification a Piece carries through the tree.
package piece

import (
	"unicode/utf16"

	"github.com/rivo/uniseg"
)

// Type classifies a Piece for filtering purposes (format_text vs.
// format_non_text, diff emission, etc).
type Type int

const (
	// Text is an ordinary run of addressable characters.
	Text Type = iota
	// NonText is a piece with no buffer backing (BufferIndex < 0); it
	// carries only metadata and has a conceptual length of 1 in
	// ordering contexts.
	NonText
	// LineFeed is a piece containing exactly one "\n"; it is the
	// boundary between logical lines.
	LineFeed
	// Structural is an explicit caller tag for container pieces (e.g.
	// a paragraph) whose children are projected under a nested
	// traversal. It overrides the derived classification and is
	// preserved across splits and merges.
	Structural
)

// String renders the type name, matching the spec's classification
// names.
func (t Type) String() string {
	switch t {
	case Text:
		return "TEXT"
	case NonText:
		return "NON_TEXT"
	case LineFeed:
		return "LINE_FEED"
	case Structural:
		return "STRUCTURAL"
	default:
		return "UNKNOWN"
	}
}

// Meta is the per-piece attribute bag: arbitrary JSON-like data (nested
// maps, scalars, slices). nil means "no metadata".
type Meta map[string]any

// Clone returns a deep copy of m.
func (m Meta) Clone() Meta {
	return cloneMeta(m)
}

// Piece is a value type describing a slice of a buffer in the pool,
// freely copied. Only Start, Length, LineFeedCount and Meta are ever
// mutated in place by the mutation engine; BufferIndex never changes
// after a Piece is created.
type Piece struct {
	// BufferIndex selects a buffer in the pool. -1 denotes a non-text
	// piece: it carries no buffer slice, only Meta.
	BufferIndex int
	// Start is the offset (in code units) into the selected buffer
	// where this piece's slice begins.
	Start int
	// Length is the number of code units in this piece's slice.
	Length int
	// LineFeedCount is the number of '\n' code units within
	// [Start, Start+Length).
	LineFeedCount int
	// Meta is this piece's attribute bag, or nil.
	Meta Meta
	// structural is the caller-set STRUCTURAL tag; see Structural.
	structural bool
}

// New builds a text/non-text piece from its raw fields. The derived
// Type is computed on demand by Type(), never stored.
func New(bufferIndex, start, length, lineFeedCount int, meta Meta) Piece {
	return Piece{
		BufferIndex:   bufferIndex,
		Start:         start,
		Length:        length,
		LineFeedCount: lineFeedCount,
		Meta:          meta,
	}
}

// MarkStructural returns a copy of p tagged STRUCTURAL. The tag
// survives Type()'s classification rule and is carried by Clone and
// by the mutation engine's split.
func (p Piece) MarkStructural() Piece {
	p.structural = true
	return p
}

// IsStructural reports whether the caller tagged this piece STRUCTURAL.
func (p Piece) IsStructural() bool {
	return p.structural
}

// Type classifies p per the spec's derived-type rule: a STRUCTURAL tag
// wins outright; otherwise a single embedded line feed makes it
// LineFeed; otherwise a negative BufferIndex makes it NonText; else
// Text.
func (p Piece) Type() Type {
	if p.structural {
		return Structural
	}
	if p.LineFeedCount == 1 {
		return LineFeed
	}
	if p.BufferIndex < 0 {
		return NonText
	}
	return Text
}

// OrderingLength returns p.Length, except for non-text pieces which are
// treated as length 1 in ordering contexts (they carry no buffer slice
// to measure).
func (p Piece) OrderingLength() int {
	if p.BufferIndex < 0 {
		return 1
	}
	return p.Length
}

// Clone returns a deep copy of p, including a fresh copy of Meta.
func (p Piece) Clone() Piece {
	p.Meta = cloneMeta(p.Meta)
	return p
}

func cloneMeta(m Meta) Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

// CodeUnitLen returns the length of s in UTF-16-style code units, the
// counting convention this engine uses for Start/Length/offsets
// throughout (see package doc). A rune outside the Basic Multilingual
// Plane counts as two code units, matching utf16.Encode.
func CodeUnitLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// LineFeedCount returns the number of '\n' code units in s.
func LineFeedCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

// GraphemeLen returns the length of s in Unicode grapheme clusters.
// This is the opt-in, explicitly non-default variant the engine offers
// alongside its default code-unit counting convention; callers that
// want user-perceived character counts (for UI cursor motion, for
// instance) use this instead of CodeUnitLen, but nothing on the
// engine's default mutation path calls it.
func GraphemeLen(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
