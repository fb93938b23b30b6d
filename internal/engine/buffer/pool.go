// Package buffer implements the buffer pool: a growing set of
// character buffers that back every Piece in the tree. Buffer 0 is the
// "append" buffer, the only buffer that ever grows; buffers 1..N are
// "original" buffers fixed at construction.
package buffer

import "unicode/utf16"

// lineFeed is the UTF-16 code unit for '\n'. It is always exactly one
// code unit, so it is safe to scan for directly.
const lineFeed = uint16('\n')

// Pool holds the append buffer and the immutable original buffers. A
// Piece's (BufferIndex, Start, Length) always addresses a still-valid
// slice: buffers never shrink, and a region once addressed never
// changes its contents, even as buffer 0 keeps growing past it.
//
// Buffers are stored as code-unit vectors (uint16), not Go strings,
// so that Start and Length can be maintained in the engine's UTF-16
// code-unit counting convention without repeatedly re-decoding UTF-8
// to find a code-unit boundary. This is the growable-vector strategy
// the engine's design notes call for in place of naive string
// concatenation.
type Pool struct {
	add       []uint16
	originals [][]uint16
}

// New builds a pool whose buffer 0 (the append buffer) starts empty,
// and whose buffers 1..len(originals) hold the given original texts,
// immutable from this point on.
func New(originals ...string) *Pool {
	p := &Pool{originals: make([][]uint16, len(originals))}
	for i, s := range originals {
		p.originals[i] = utf16.Encode([]rune(s))
	}
	return p
}

// BufferCount returns the number of buffers in the pool, including
// the append buffer.
func (p *Pool) BufferCount() int {
	return 1 + len(p.originals)
}

// Append adds text to the end of buffer 0 and returns the start offset
// and code-unit length of the slice it now occupies. The append
// buffer's logical length (used by the mutation engine's
// continuous-append check) is simply len after this call.
func (p *Pool) Append(text string) (start, length int) {
	units := utf16.Encode([]rune(text))
	start = len(p.add)
	p.add = append(p.add, units...)
	return start, len(units)
}

// Len returns the current code-unit length of the given buffer. A
// negative buffer_index (non-text piece) has length 0.
func (p *Pool) Len(bufferIndex int) int {
	units := p.slice(bufferIndex)
	return len(units)
}

// Text returns the string addressed by [start, start+length) in the
// given buffer. A negative buffer_index returns the empty string, per
// the non-text piece convention. Out-of-range start/length are
// clamped rather than panicking, since callers are expected to have
// already validated against a Piece taken from the tree.
func (p *Pool) Text(bufferIndex, start, length int) string {
	units := p.slice(bufferIndex)
	if units == nil {
		return ""
	}
	s, e := clampRange(len(units), start, length)
	return string(utf16.Decode(units[s:e]))
}

// LineFeedCount returns the number of '\n' code units within
// [start, start+length) of the given buffer. The mutation engine uses
// this to recompute a piece's line_feed_count after Start/Length
// change, per the spec's split and delete algorithms.
func (p *Pool) LineFeedCount(bufferIndex, start, length int) int {
	units := p.slice(bufferIndex)
	if units == nil {
		return 0
	}
	s, e := clampRange(len(units), start, length)
	n := 0
	for _, u := range units[s:e] {
		if u == lineFeed {
			n++
		}
	}
	return n
}

func (p *Pool) slice(bufferIndex int) []uint16 {
	if bufferIndex < 0 {
		return nil
	}
	if bufferIndex == 0 {
		return p.add
	}
	idx := bufferIndex - 1
	if idx < 0 || idx >= len(p.originals) {
		return nil
	}
	return p.originals[idx]
}

func clampRange(n, start, length int) (s, e int) {
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	e = start + length
	if e < start {
		e = start
	}
	if e > n {
		e = n
	}
	return start, e
}
