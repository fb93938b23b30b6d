package mutation

import "github.com/textmodel/piecetree/internal/engine/rbtree"

// SplitStructural breaks a structural region (e.g. a paragraph) into
// two by cloning
// the structural node's own marker piece into a new sibling inserted
// right after splitAfter. Structural pieces carry no buffer slice, so
// nothing about the nodes that follow splitAfter needs to move: they
// belong to the new region simply by falling after its marker in the
// in-order sequence, up to the next structural marker at the same or a
// shallower level.
//
// This is never called by Insert, Delete or Format; callers that model
// nested structural regions invoke it explicitly when a plain text
// insert lands inside one and should break it into two.
func (e *Engine) SplitStructural(structural *rbtree.Node, splitAfter *rbtree.Node) *rbtree.Node {
	if structural == nil || !structural.Piece.IsStructural() {
		return nil
	}
	clone := structural.Piece.Clone()
	return e.Tree.InsertAfter(clone, splitAfter)
}
