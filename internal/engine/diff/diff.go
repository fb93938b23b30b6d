// Package diff defines the wire shape emitted by every mutation: a
// line-level description of how an external view (a renderer, a
// collaborator's view) should update.
package diff

// Type is the kind of line-level change a Diff describes.
type Type string

const (
	// Insert means a new line now exists at LineNumber.
	Insert Type = "insert"
	// Remove means the line that used to be at LineNumber is gone.
	Remove Type = "remove"
	// Replace means the line at LineNumber changed content in place.
	Replace Type = "replace"
)

// Diff is one line-level delta. LineNumber is 1-based. For Insert and
// Replace it refers to the state after the mutation; for Remove it
// refers to the state before it.
type Diff struct {
	Type       Type `json:"type"`
	LineNumber int  `json:"lineNumber"`
}

// Flip returns the directionally-inverted diff used when undoing a
// change: Insert becomes Remove and vice versa; Replace is unchanged.
func (d Diff) Flip() Diff {
	switch d.Type {
	case Insert:
		return Diff{Type: Remove, LineNumber: d.LineNumber}
	case Remove:
		return Diff{Type: Insert, LineNumber: d.LineNumber}
	default:
		return d
	}
}

// FlipAll flips every diff in ds, preserving order. The change stack
// uses this to turn a group's forward diffs into the list undo()
// returns.
func FlipAll(ds []Diff) []Diff {
	out := make([]Diff, len(ds))
	for i, d := range ds {
		out[i] = d.Flip()
	}
	return out
}
