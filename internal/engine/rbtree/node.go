package rbtree

import "github.com/textmodel/piecetree/internal/engine/piece"

// Color is a red-black node colour.
type Color bool

const (
	Red   Color = true
	Black Color = false
)

// Node is a red-black tree node carrying a Piece plus the six subtree
// aggregates the piece tree needs for O(log n) offset, line and rank
// lookup. Left, Right and Parent never hold a nil *Node; an absent
// child or root's parent is the shared sentinel instead.
type Node struct {
	Piece piece.Piece

	color  Color
	left   *Node
	right  *Node
	parent *Node

	// Aggregates over the respective subtree, excluding this node's
	// own piece.
	leftSize          int
	rightSize         int
	leftLineFeedCnt   int
	rightLineFeedCnt  int
	leftNodeCnt       int
	rightNodeCnt      int
}

// sentinel is the single shared black node standing in for every
// absent child and for root's parent. It is never written to: every
// site that would otherwise mutate it (per the classic CLRS
// presentation) branches on isNil instead. Its zero-valued aggregates
// are never read as meaningful data, only as the base case of a
// recursive sum.
var sentinel = &Node{color: Black}

// isNil reports whether n is the shared sentinel (or a bare nil
// pointer, which should not occur but is treated the same way).
func isNil(n *Node) bool {
	return n == nil || n == sentinel
}

func newNode(p piece.Piece) *Node {
	return &Node{
		Piece:  p,
		color:  Red,
		left:   sentinel,
		right:  sentinel,
		parent: sentinel,
	}
}

// Left, Right and Parent expose the node's neighbours. They return nil
// (the real Go nil, not the sentinel) when the neighbour is absent, so
// that package consumers never need to import rbtree's sentinel to
// test for it; compare the result with nil if you need to distinguish.
func (n *Node) Left() *Node {
	if n == nil || isNil(n.left) {
		return nil
	}
	return n.left
}

func (n *Node) Right() *Node {
	if n == nil || isNil(n.right) {
		return nil
	}
	return n.right
}

func (n *Node) Parent() *Node {
	if n == nil || isNil(n.parent) {
		return nil
	}
	return n.parent
}

// IsRed reports whether n is coloured red. A nil node is black.
func (n *Node) IsRed() bool {
	return n != nil && !isNil(n) && n.color == Red
}

// Size returns the code-unit size of the subtree rooted at n.
func (n *Node) Size() int {
	if isNil(n) {
		return 0
	}
	return n.leftSize + n.rightSize + n.Piece.OrderingLength()
}

// LineFeedCount returns the total line-feed count of the subtree
// rooted at n.
func (n *Node) LineFeedCount() int {
	if isNil(n) {
		return 0
	}
	return n.leftLineFeedCnt + n.rightLineFeedCnt + n.Piece.LineFeedCount
}

// NodeCount returns the number of nodes in the subtree rooted at n.
func (n *Node) NodeCount() int {
	if isNil(n) {
		return 0
	}
	return n.leftNodeCnt + n.rightNodeCnt + 1
}

// updateMeta recomputes n's six aggregates from its immediate
// children's already-current aggregates. It does not recurse: callers
// are responsible for calling this bottom-up (see updateMetaUpward).
func (n *Node) updateMeta() {
	if isNil(n) {
		return
	}
	n.leftSize = n.left.Size()
	n.leftLineFeedCnt = n.left.LineFeedCount()
	n.leftNodeCnt = n.left.NodeCount()
	n.rightSize = n.right.Size()
	n.rightLineFeedCnt = n.right.LineFeedCount()
	n.rightNodeCnt = n.right.NodeCount()
}

// updateMetaUpward recomputes aggregates for x and every ancestor up
// to the root. Every structural change (insert, delete, rotation)
// ends with a call to this on the lowest node it touched.
func updateMetaUpward(x *Node) {
	for !isNil(x) {
		x.updateMeta()
		x = x.parent
	}
}

// leftmost returns the leftmost (smallest in-order) node in the
// subtree rooted at x, or the sentinel if x is nil.
func leftmost(x *Node) *Node {
	if isNil(x) {
		return sentinel
	}
	for !isNil(x.left) {
		x = x.left
	}
	return x
}

// rightmost returns the rightmost (largest in-order) node in the
// subtree rooted at x, or the sentinel if x is nil.
func rightmost(x *Node) *Node {
	if isNil(x) {
		return sentinel
	}
	for !isNil(x.right) {
		x = x.right
	}
	return x
}

// successor returns x's in-order successor, or the sentinel if x is
// the last node.
func successor(x *Node) *Node {
	if isNil(x) {
		return sentinel
	}
	if !isNil(x.right) {
		return leftmost(x.right)
	}
	y := x.parent
	for !isNil(y) && x == y.right {
		x = y
		y = y.parent
	}
	return y
}

// predecessor returns x's in-order predecessor, or the sentinel if x
// is the first node.
func predecessor(x *Node) *Node {
	if isNil(x) {
		return sentinel
	}
	if !isNil(x.left) {
		return rightmost(x.left)
	}
	y := x.parent
	for !isNil(y) && x == y.left {
		x = y
		y = y.parent
	}
	return y
}

// positionOf computes the cumulative (start offset, start line-feed
// count) of n: the total size and line-feed count of every node that
// precedes n in in-order sequence. It runs in O(log n) by walking
// ancestors, consulting each ancestor's left-subtree aggregates only
// when n's path passes through that ancestor's right side.
func positionOf(n *Node) (startOffset, startLineFeedCount int) {
	if isNil(n) {
		return 0, 0
	}
	startOffset = n.leftSize
	startLineFeedCount = n.leftLineFeedCnt
	for p := n; !isNil(p.parent); p = p.parent {
		if p == p.parent.right {
			startOffset += p.parent.leftSize + p.parent.Piece.OrderingLength()
			startLineFeedCount += p.parent.leftLineFeedCnt + p.parent.Piece.LineFeedCount
		}
	}
	return startOffset, startLineFeedCount
}
