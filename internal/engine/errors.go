package engine

import "errors"

// Errors returned by PieceTree operations.
var (
	// ErrEmptyInsertText indicates Insert was called with an empty
	// string and no metadata. An empty insert is only meaningful when
	// it carries metadata (a non-text piece).
	ErrEmptyInsertText = errors.New("piecetree: insert text is empty and carries no metadata")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("piecetree: nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("piecetree: nothing to redo")

	// ErrReadOnly indicates a write operation was attempted on a
	// read-only tree (see WithReadOnly).
	ErrReadOnly = errors.New("piecetree: tree is read-only")
)
