package mutation

import (
	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/meta"
	"github.com/textmodel/piecetree/internal/engine/piece"
	"github.com/textmodel/piecetree/internal/engine/rbtree"
)

// Restore re-inserts a sequence of already-constructed pieces at
// offset, in order, using the same anchor-determination rule as
// Insert: if the position lands exactly on a node boundary, the
// pieces go immediately after that node's predecessor (or become the
// new leftmost node); if it lands mid-piece, the node is split first.
// This is what undoing a Delete comes down to — the pieces it is given
// already address valid, never-rewritten buffer regions, so nothing
// needs to be re-appended.
func (e *Engine) Restore(offset int, pieces []piece.Piece) []diff.Diff {
	if len(pieces) == 0 {
		return nil
	}

	find := e.Tree.FindByOffset(offset)
	baseLine := find.StartLineFeedCount
	anchor := find.Node
	first := find.Node

	switch {
	case find.Remainder == 0:
		if anchor != nil {
			anchor = e.Tree.Predecessor(anchor)
		}
	case anchor != nil && find.Remainder < anchor.Piece.Length:
		left, _ := e.splitNode(anchor, find.Remainder)
		anchor = left
	}

	lineFeeds := 0
	for _, p := range pieces {
		var node *rbtree.Node
		if anchor == nil && first != nil {
			node = e.Tree.InsertBefore(p.Clone(), first)
		} else {
			node = e.Tree.InsertAfter(p.Clone(), anchor)
		}
		anchor = node
		lineFeeds += p.LineFeedCount
	}

	diffs := []diff.Diff{{Type: diff.Replace, LineNumber: baseLine}}
	for i := 1; i <= lineFeeds; i++ {
		diffs = append(diffs, diff.Diff{Type: diff.Insert, LineNumber: baseLine + i})
	}
	return diffs
}

// ApplyMetaPatches locates the node starting exactly at startOffset
// and replays patches against its Meta. It is how FormatChange's
// undo applies a PiecePatch's inverse patches: Format always splits
// node boundaries to align with the formatted range, so startOffset
// lands exactly on a node start with no further splitting needed,
// provided no other mutation has touched the tree since the format
// ran (true for the top entry of an undo stack under the engine's
// single-writer model).
func (e *Engine) ApplyMetaPatches(startOffset int, patches []meta.Patch) error {
	find := e.Tree.FindByOffset(startOffset)
	n := find.Node
	if n == nil || len(patches) == 0 {
		return nil
	}
	merged, err := meta.ApplyValues(n.Piece.Meta, patches)
	if err != nil {
		return err
	}
	n.Piece.Meta = merged
	e.Tree.Touch(n)
	return nil
}
