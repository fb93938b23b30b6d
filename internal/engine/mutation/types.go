package mutation

import (
	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/meta"
	"github.com/textmodel/piecetree/internal/engine/piece"
)

// InsertResult is everything a caller needs to record an undoable
// insert: the diffs to surface, and the span of buffer 0 the inserted
// text ended up occupying (the append buffer never discards, so this
// span alone lets redo reconstruct the exact text later).
type InsertResult struct {
	Diffs       []diff.Diff
	AppendStart int
	AppendLen   int
}

// DeletedPiece is a copy of a piece (or the deleted prefix of one)
// that Delete removed or truncated, captured for undo re-insertion.
type DeletedPiece struct {
	Piece piece.Piece
}

// DeleteResult is everything a caller needs to record an undoable
// delete.
type DeleteResult struct {
	Diffs  []diff.Diff
	Pieces []DeletedPiece
}

// PiecePatch records one piece's metadata change from a Format call,
// so it can be undone without re-deriving the merge.
type PiecePatch struct {
	StartOffset    int
	Length         int
	InversePatches []meta.Patch
}

// FormatResult is everything a caller needs to record an undoable
// format.
type FormatResult struct {
	Diffs        []diff.Diff
	PiecePatches []PiecePatch
}

// TypeFilter restricts Format to pieces of a single classification.
// FilterAll formats every piece regardless of type.
type TypeFilter int

const (
	FilterAll TypeFilter = iota
	FilterText
	FilterNonText
)

func (f TypeFilter) matches(t piece.Type) bool {
	switch f {
	case FilterText:
		return t == piece.Text
	case FilterNonText:
		return t == piece.NonText
	default:
		return true
	}
}
