package engine

import "github.com/textmodel/piecetree/internal/engine/piece"

// LinePiece is one piece's contribution to a Line's text, with its
// text already resolved from the buffer pool.
type LinePiece struct {
	Text   string
	Length int
	Meta   piece.Meta
}

// Line is the result of GetLine/GetLines: the pieces that make up one
// logical line, plus the line's own metadata. Meta is the metadata
// carried by the line-feed piece that terminates this line; it is nil
// for the final, unterminated line, since that line has no line-feed
// piece of its own to carry it (see DESIGN.md's Open Question decision
// on Line.Meta).
type Line struct {
	Meta   piece.Meta
	Pieces []LinePiece
}

// emptyLine is the canonical "no content" line shape for an
// out-of-range or genuinely empty line: a single zero-length piece,
// never an empty slice.
func emptyLine() Line {
	return Line{Pieces: []LinePiece{{Text: "", Length: 0}}}
}
