// Package piece is the smallest building block of the engine: the
// value type a tree node carries, and the classification rules that
// every other package (rbtree, mutation, diff) consults.
//
// # Counting convention
//
// Start, Length and LineFeedCount are all expressed in UTF-16-style
// code units, not runes and not bytes. A supplementary-plane rune
// (anything above U+FFFF) counts as two code units. This matches the
// convention most piece-tree implementations inherit from a
// JavaScript host string, and the engine keeps it as the default
// throughout. See CodeUnitLen and GraphemeLen.
//
// # Classification
//
//	p := piece.New(0, 0, 5, 0, nil)
//	p.Type() // piece.Text
//
//	nt := piece.New(-1, 0, 0, 0, piece.Meta{"kind": "image"})
//	nt.Type() // piece.NonText
//
//	lf := piece.New(0, 5, 1, 1, nil)
//	lf.Type() // piece.LineFeed
//
//	st := piece.New(0, 0, 0, 0, nil).MarkStructural()
//	st.Type() // piece.Structural
package piece
