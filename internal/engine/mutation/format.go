package mutation

import (
	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/meta"
	"github.com/textmodel/piecetree/internal/engine/piece"
)

// Format merges m into the metadata of every piece of type filter
// overlapping [offset, offset+length), splitting at most two boundary
// nodes so the merge never touches code units outside the requested
// range.
func (e *Engine) Format(offset, length int, m piece.Meta, filter TypeFilter) FormatResult {
	if length <= 0 || m == nil {
		return FormatResult{}
	}

	find := e.Tree.FindByOffset(offset)
	baseLine := find.StartLineFeedCount
	n := find.Node
	if n == nil {
		return FormatResult{}
	}

	switch {
	case find.Remainder == n.Piece.Length:
		n = e.Tree.Successor(n)
	case find.Remainder > 0:
		_, right := e.splitNode(n, find.Remainder)
		n = right
	}

	var patches []PiecePatch
	remaining := length
	startOffset := offset
	currentLine := baseLine
	lines := []int{baseLine}

	for remaining > 0 && n != nil {
		plen := n.Piece.OrderingLength()
		consume := plen
		if consume > remaining {
			consume = remaining
			left, _ := e.splitNode(n, consume)
			n = left
		}

		next := e.Tree.Successor(n)
		if filter.matches(n.Piece.Type()) {
			merged, _, inverse, err := meta.MergeValues(n.Piece.Meta, m)
			if err == nil && len(inverse) > 0 {
				n.Piece.Meta = merged
				e.Tree.Touch(n)
				patches = append(patches, PiecePatch{
					StartOffset:    startOffset,
					Length:         consume,
					InversePatches: inverse,
				})
			}
		}

		if n.Piece.LineFeedCount > 0 {
			currentLine++
			if remaining-consume > 0 {
				lines = append(lines, currentLine)
			}
		}

		startOffset += consume
		remaining -= consume
		n = next
	}

	diffs := make([]diff.Diff, len(lines))
	for i, line := range lines {
		diffs[i] = diff.Diff{Type: diff.Replace, LineNumber: line}
	}

	return FormatResult{
		Diffs:        diffs,
		PiecePatches: patches,
	}
}
