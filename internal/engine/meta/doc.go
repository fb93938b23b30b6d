// Package meta implements merge_meta: overlaying one metadata document
// onto another while recording exactly how to undo it.
//
// # Why JSON text
//
// Go's map[string]any has no stable iteration order, but the merge's
// patch order is specified to be deterministic (source document
// order, nested objects fully before sibling scalars). Merge therefore
// operates on JSON text via github.com/tidwall/gjson (reading, in
// document order) and github.com/tidwall/sjson (writing), which is
// the one representation that actually carries key order end to end.
// MergeValues bridges piece.Meta (the map type pieces store) at the
// cost of the order guarantee holding only as well as
// encoding/json's sorted-key marshalling provides.
//
//	merged, fwd, inv, err := meta.Merge(
//	    `{"age":10,"obj":{"color":10}}`,
//	    `{"age":11,"obj":{"color":11,"ss":10}}`,
//	)
//	// fwd:  replace obj.color, add obj.ss, replace age
//	// inv:  replace obj.color, remove obj.ss, replace age
package meta
