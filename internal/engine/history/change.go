package history

import (
	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/mutation"
	"github.com/textmodel/piecetree/internal/engine/piece"
)

// Change is a single reversible mutation: an InsertChange, DeleteChange
// or FormatChange. Its Diffs are fixed at the moment it was pushed;
// Undo and Redo replay the mutation against the live tree but a
// Change's own Diffs() value never changes across that replay.
type Change interface {
	Diffs() []diff.Diff
	Undo(eng *mutation.Engine)
	Redo(eng *mutation.Engine)
}

// InsertChange is the record pushed after a successful Insert. It
// does not store the inserted text directly: AppendStart/AppendLen
// address the span of buffer 0 the insert occupied, and the append
// buffer never discards, so Redo can always recover the exact text
// from the pool.
type InsertChange struct {
	Offset      int
	AppendStart int
	AppendLen   int
	Meta        piece.Meta
	diffs       []diff.Diff
}

// NewInsertChange builds an InsertChange from the result of an Insert call.
func NewInsertChange(offset int, res mutation.InsertResult, m piece.Meta) *InsertChange {
	return &InsertChange{
		Offset:      offset,
		AppendStart: res.AppendStart,
		AppendLen:   res.AppendLen,
		Meta:        m,
		diffs:       res.Diffs,
	}
}

func (c *InsertChange) Diffs() []diff.Diff { return c.diffs }

// Undo deletes exactly the code units this insert added.
func (c *InsertChange) Undo(eng *mutation.Engine) {
	if c.AppendLen == 0 {
		eng.Delete(c.Offset, 1) // non-text piece insert: occupies one ordering slot
		return
	}
	eng.Delete(c.Offset, c.AppendLen)
}

// Redo re-runs the insert using the text already sitting in the
// append buffer at AppendStart/AppendLen.
func (c *InsertChange) Redo(eng *mutation.Engine) {
	if c.AppendLen == 0 {
		eng.Insert(c.Offset, "", c.Meta.Clone())
		return
	}
	text := eng.Pool.Text(0, c.AppendStart, c.AppendLen)
	eng.Insert(c.Offset, text, c.Meta.Clone())
}

// DeleteChange is the record pushed after a successful Delete. The
// captured pieces still address valid buffer regions (buffers never
// shrink or rewrite), so undo re-inserts them directly with no new
// buffer append.
type DeleteChange struct {
	Offset int
	Length int
	Pieces []mutation.DeletedPiece
	diffs  []diff.Diff
}

// NewDeleteChange builds a DeleteChange from the result of a Delete call.
func NewDeleteChange(offset, length int, res mutation.DeleteResult) *DeleteChange {
	return &DeleteChange{
		Offset: offset,
		Length: length,
		Pieces: res.Pieces,
		diffs:  res.Diffs,
	}
}

func (c *DeleteChange) Diffs() []diff.Diff { return c.diffs }

// Undo re-inserts the captured pieces at Offset, in their original order.
func (c *DeleteChange) Undo(eng *mutation.Engine) {
	if len(c.Pieces) == 0 {
		return
	}
	pieces := make([]piece.Piece, len(c.Pieces))
	for i, dp := range c.Pieces {
		pieces[i] = dp.Piece
	}
	eng.Restore(c.Offset, pieces)
}

// Redo re-runs the delete at the same offset and length.
func (c *DeleteChange) Redo(eng *mutation.Engine) {
	eng.Delete(c.Offset, c.Length)
}

// FormatChange is the record pushed after a successful Format. Its
// PiecePatches carry exactly the inverse patches needed to undo the
// meta merge, piece by piece, without re-deriving the merge.
type FormatChange struct {
	Offset       int
	Length       int
	Meta         piece.Meta
	Filter       mutation.TypeFilter
	PiecePatches []mutation.PiecePatch
	diffs        []diff.Diff
}

// NewFormatChange builds a FormatChange from the result of a Format call.
func NewFormatChange(offset, length int, m piece.Meta, filter mutation.TypeFilter, res mutation.FormatResult) *FormatChange {
	return &FormatChange{
		Offset:       offset,
		Length:       length,
		Meta:         m,
		Filter:       filter,
		PiecePatches: res.PiecePatches,
		diffs:        res.Diffs,
	}
}

func (c *FormatChange) Diffs() []diff.Diff { return c.diffs }

// Undo applies each patch's inverse to the piece it was recorded against.
func (c *FormatChange) Undo(eng *mutation.Engine) {
	for _, p := range c.PiecePatches {
		_ = eng.ApplyMetaPatches(p.StartOffset, p.InversePatches)
	}
}

// Redo re-runs the format over the same range with the same meta.
func (c *FormatChange) Redo(eng *mutation.Engine) {
	eng.Format(c.Offset, c.Length, c.Meta.Clone(), c.Filter)
}
