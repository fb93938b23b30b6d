// Package mutation implements the insert, delete and format algorithms
// that run on top of a rbtree.Tree and a buffer.Pool: node splitting,
// continuous-append coalescing, piece-type filtering, and structural
// split. Every offset and length this package's methods accept is
// already in the tree's internal (sentinel-biased) coordinate space;
// the +1 external-to-internal offset bias is the engine facade's job,
// not this package's.
package mutation

import (
	"github.com/textmodel/piecetree/internal/engine/buffer"
	"github.com/textmodel/piecetree/internal/engine/piece"
	"github.com/textmodel/piecetree/internal/engine/rbtree"
)

// Engine runs the mutation algorithms against a tree and pool it does
// not own; the caller (ordinarily the history and engine packages)
// owns their lifetime.
type Engine struct {
	Tree *rbtree.Tree
	Pool *buffer.Pool
}

// New returns a mutation Engine over the given tree and pool.
func New(tree *rbtree.Tree, pool *buffer.Pool) *Engine {
	return &Engine{Tree: tree, Pool: pool}
}

// splitNode splits n's piece at remainder (0 < remainder <
// n.Piece.Length): a new node is inserted immediately before n
// holding the piece's first remainder code units, and n is mutated in
// place to hold the remaining tail. Returns (left, right) where right
// is n itself.
func (e *Engine) splitNode(n *rbtree.Node, remainder int) (left, right *rbtree.Node) {
	leftLineFeeds := e.Pool.LineFeedCount(n.Piece.BufferIndex, n.Piece.Start, remainder)
	leftPiece := piece.New(n.Piece.BufferIndex, n.Piece.Start, remainder, leftLineFeeds, n.Piece.Meta.Clone())
	if n.Piece.IsStructural() {
		leftPiece = leftPiece.MarkStructural()
	}

	n.Piece.Start += remainder
	n.Piece.Length -= remainder
	n.Piece.LineFeedCount -= leftLineFeeds

	leftNode := e.Tree.InsertBefore(leftPiece, n)
	return leftNode, n
}

// Split is splitNode's exported form, used directly by tests
// exercising the split law (property 7) and available to callers that
// need to force a boundary without going through Format/Insert/Delete.
func (e *Engine) Split(n *rbtree.Node, remainder int) (left, right *rbtree.Node) {
	return e.splitNode(n, remainder)
}
