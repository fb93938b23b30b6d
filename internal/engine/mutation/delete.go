package mutation

import (
	"github.com/textmodel/piecetree/internal/engine/diff"
)

// Delete removes length code units starting at offset, splitting at
// most two node boundaries (the start and the end of the range) and
// consuming every whole node in between.
func (e *Engine) Delete(offset, length int) DeleteResult {
	if length <= 0 {
		return DeleteResult{}
	}

	find := e.Tree.FindByOffset(offset)
	baseLine := find.StartLineFeedCount
	n := find.Node
	if n == nil {
		return DeleteResult{Diffs: []diff.Diff{{Type: diff.Replace, LineNumber: baseLine}}}
	}

	if find.Remainder == n.Piece.Length {
		n = e.Tree.Successor(n)
	} else if find.Remainder > 0 {
		_, right := e.splitNode(n, find.Remainder)
		n = right
	}

	var pieces []DeletedPiece
	removedLineFeeds := 0
	remaining := length

	for remaining > 0 && n != nil {
		plen := n.Piece.OrderingLength()
		switch {
		case remaining >= plen:
			pieces = append(pieces, DeletedPiece{Piece: n.Piece.Clone()})
			removedLineFeeds += n.Piece.LineFeedCount
			next := e.Tree.Successor(n)
			e.Tree.Delete(n)
			remaining -= plen
			n = next
		default:
			left, _ := e.splitNode(n, remaining)
			pieces = append(pieces, DeletedPiece{Piece: left.Piece.Clone()})
			removedLineFeeds += left.Piece.LineFeedCount
			e.Tree.Delete(left)
			remaining = 0
		}
	}

	diffs := []diff.Diff{{Type: diff.Replace, LineNumber: baseLine}}
	for i := 1; i <= removedLineFeeds; i++ {
		diffs = append(diffs, diff.Diff{Type: diff.Remove, LineNumber: baseLine + i})
	}

	return DeleteResult{Diffs: diffs, Pieces: pieces}
}
