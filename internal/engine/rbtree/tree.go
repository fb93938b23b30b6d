// Package rbtree implements the piece tree's core structure: an
// order-statistic red-black tree whose nodes carry a piece.Piece and
// six subtree aggregates (size, line-feed count and node count, each
// split left/right), giving O(log n) lookup by offset, by line number, and
// by in-order rank.
package rbtree

import "github.com/textmodel/piecetree/internal/engine/piece"

func init() {
	// The sentinel self-loops so every field access off it (including
	// through a node that was transplanted to point "at" it) is safe
	// without ever writing to it. See node.go's sentinel doc comment.
	sentinel.left = sentinel
	sentinel.right = sentinel
	sentinel.parent = sentinel
}

// Tree is an order-statistic red-black tree of pieces.
type Tree struct {
	root *Node
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: sentinel}
}

// Root returns the tree's root node, or nil if the tree is empty.
func (t *Tree) Root() *Node {
	if isNil(t.root) {
		return nil
	}
	return t.root
}

// TotalSize returns the code-unit size of the whole tree.
func (t *Tree) TotalSize() int { return t.root.Size() }

// TotalLineFeedCount returns the total line-feed count across every
// piece in the tree, including the leading sentinel line-feed piece.
func (t *Tree) TotalLineFeedCount() int { return t.root.LineFeedCount() }

// TotalLineCount returns the logical line count: one more than the
// total line-feed count, since the text after the last newline is
// always itself a line (possibly empty).
func (t *Tree) TotalLineCount() int { return t.TotalLineFeedCount() + 1 }

// TotalNodeCount returns the number of nodes in the tree.
func (t *Tree) TotalNodeCount() int { return t.root.NodeCount() }

// First returns the leftmost (first in-order) node, or nil if empty.
func (t *Tree) First() *Node {
	n := leftmost(t.root)
	if isNil(n) {
		return nil
	}
	return n
}

// Last returns the rightmost (last in-order) node, or nil if empty.
func (t *Tree) Last() *Node {
	n := rightmost(t.root)
	if isNil(n) {
		return nil
	}
	return n
}

// Successor returns n's in-order successor, or nil if n is last.
func (t *Tree) Successor(n *Node) *Node {
	s := successor(n)
	if isNil(s) {
		return nil
	}
	return s
}

// Predecessor returns n's in-order predecessor, or nil if n is first.
func (t *Tree) Predecessor(n *Node) *Node {
	p := predecessor(n)
	if isNil(p) {
		return nil
	}
	return p
}

// PositionOf returns the cumulative start offset and start line-feed
// count of n: the total size and line-feed count of every node
// preceding n in in-order sequence.
func (t *Tree) PositionOf(n *Node) (startOffset, startLineFeedCount int) {
	return positionOf(n)
}

// Touch recomputes aggregates for n and every ancestor up to the
// root. Call this after mutating a node's Piece in place (only Start,
// Length, LineFeedCount and Meta may be mutated in place; BufferIndex
// never changes). Structural operations (InsertBefore,
// InsertAfter, Delete) already call this internally; Touch is for the
// in-place-edit case those don't cover, such as extending a piece's
// Length during continuous-append coalescing.
func (t *Tree) Touch(n *Node) {
	updateMetaUpward(n)
}

// ForEach visits every node in in-order sequence, stopping early if fn
// returns false. Callers must not mutate the tree while iterating.
func (t *Tree) ForEach(fn func(n *Node) bool) {
	var visit func(x *Node) bool
	visit = func(x *Node) bool {
		if isNil(x) {
			return true
		}
		if !visit(x.left) {
			return false
		}
		if !fn(x) {
			return false
		}
		return visit(x.right)
	}
	visit(t.root)
}

// --- Rotations -------------------------------------------------------

func (t *Tree) leftRotate(x *Node) {
	y := x.right
	x.right = y.left
	if !isNil(y.left) {
		y.left.parent = x
	}
	y.parent = x.parent
	if isNil(x.parent) {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y

	x.updateMeta()
	y.updateMeta()
	updateMetaUpward(y.parent)
}

func (t *Tree) rightRotate(x *Node) {
	y := x.left
	x.left = y.right
	if !isNil(y.right) {
		y.right.parent = x
	}
	y.parent = x.parent
	if isNil(x.parent) {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y

	x.updateMeta()
	y.updateMeta()
	updateMetaUpward(y.parent)
}

// --- Insertion --------------------------------------------------------

// InsertBefore creates a node for p and attaches it as ref's immediate
// in-order predecessor. If ref is nil, the new node becomes the root
// (used for seeding an empty tree). Returns the new node.
func (t *Tree) InsertBefore(p piece.Piece, ref *Node) *Node {
	n := newNode(p)
	switch {
	case isNil(ref):
		t.attachRoot(n)
	case isNil(ref.left):
		t.attachLeft(ref, n)
	default:
		// ref.left is occupied: the predecessor of ref is the
		// rightmost node of ref's left subtree, whose right child is
		// therefore guaranteed free.
		t.attachRight(predecessor(ref), n)
	}
	updateMetaUpward(n)
	t.insertFixup(n)
	return n
}

// InsertAfter creates a node for p and attaches it as ref's immediate
// in-order successor. If ref is nil, the new node becomes the root.
// Returns the new node.
func (t *Tree) InsertAfter(p piece.Piece, ref *Node) *Node {
	n := newNode(p)
	switch {
	case isNil(ref):
		t.attachRoot(n)
	case isNil(ref.right):
		t.attachRight(ref, n)
	default:
		// the successor of ref is the leftmost node of ref's right
		// subtree, whose left child is therefore guaranteed free.
		t.attachLeft(successor(ref), n)
	}
	updateMetaUpward(n)
	t.insertFixup(n)
	return n
}

func (t *Tree) attachRoot(n *Node) {
	n.parent = sentinel
	t.root = n
}

func (t *Tree) attachLeft(parent, n *Node) {
	n.parent = parent
	parent.left = n
}

func (t *Tree) attachRight(parent, n *Node) {
	n.parent = parent
	parent.right = n
}

func (t *Tree) insertFixup(z *Node) {
	for z.parent.color == Red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == Red {
				z.parent.color = Black
				y.color = Black
				z.parent.parent.color = Red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = Black
				z.parent.parent.color = Red
				t.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == Red {
				z.parent.color = Black
				y.color = Black
				z.parent.parent.color = Red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = Black
				z.parent.parent.color = Red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = Black
}

// --- Deletion ----------------------------------------------------------

// transplant replaces the subtree rooted at u with the subtree rooted
// at v. It never writes to the sentinel: if v is the sentinel, its
// parent field is simply left untouched, since nothing after this call
// should read it without going through the xParent threading that
// Delete and deleteFixup use instead.
func (t *Tree) transplant(u, v *Node) {
	switch {
	case isNil(u.parent):
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if !isNil(v) {
		v.parent = u.parent
	}
}

// Delete removes z from the tree using the in-order successor when
// both children are present, and returns the detached node (its
// links are cleared; its Piece remains readable). z must be a node
// currently in this tree.
func (t *Tree) Delete(z *Node) *Node {
	y := z
	yOriginalColor := y.color
	var x, xParent *Node

	switch {
	case isNil(z.left):
		x = z.right
		xParent = z.parent
		t.transplant(z, z.right)
	case isNil(z.right):
		x = z.left
		xParent = z.parent
		t.transplant(z, z.left)
	default:
		y = leftmost(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
		y.updateMeta()
	}

	updateMetaUpward(xParent)

	if yOriginalColor == Black {
		t.deleteFixup(x, xParent)
	}

	z.left, z.right, z.parent = sentinel, sentinel, sentinel
	return z
}

// deleteFixup restores the red-black invariants after a black node was
// removed. x is the node that moved into the deleted position (which
// may be the sentinel); xParent is x's parent, threaded explicitly
// because the sentinel's own parent field is never written.
func (t *Tree) deleteFixup(x, xParent *Node) {
	for x != t.root && x.color == Black {
		if x == xParent.left {
			w := xParent.right
			if w.color == Red {
				w.color = Black
				xParent.color = Red
				t.leftRotate(xParent)
				w = xParent.right
			}
			if w.left.color == Black && w.right.color == Black {
				w.color = Red
				x = xParent
				xParent = xParent.parent
			} else {
				if w.right.color == Black {
					w.left.color = Black
					w.color = Red
					t.rightRotate(w)
					w = xParent.right
				}
				w.color = xParent.color
				xParent.color = Black
				w.right.color = Black
				t.leftRotate(xParent)
				x = t.root
			}
		} else {
			w := xParent.left
			if w.color == Red {
				w.color = Black
				xParent.color = Red
				t.rightRotate(xParent)
				w = xParent.left
			}
			if w.right.color == Black && w.left.color == Black {
				w.color = Red
				x = xParent
				xParent = xParent.parent
			} else {
				if w.left.color == Black {
					w.right.color = Black
					w.color = Red
					t.leftRotate(w)
					w = xParent.left
				}
				w.color = xParent.color
				xParent.color = Black
				w.left.color = Black
				t.rightRotate(xParent)
				x = t.root
			}
		}
	}
	if !isNil(x) {
		x.color = Black
	}
}

// --- Order-statistic lookups --------------------------------------------

// NodeAt returns the node whose in-order rank (1-based, counted by
// node, not by size) equals index, or nil if index is out of range.
func (t *Tree) NodeAt(index int) *Node {
	if index < 1 || index > t.root.NodeCount() {
		return nil
	}
	x := t.root
	remaining := index
	for !isNil(x) {
		switch {
		case remaining <= x.leftNodeCnt:
			x = x.left
		case remaining == x.leftNodeCnt+1:
			return x
		default:
			remaining -= x.leftNodeCnt + 1
			x = x.right
		}
	}
	return nil
}

// FindResult is the result of a position lookup: the node containing
// the queried position, how far into that node's piece the position
// falls, and the cumulative offset/line-feed count preceding the node.
// Node is nil when the tree is empty or the lookup falls past the last
// node with no following node (the implicit trailing empty line).
type FindResult struct {
	Node                *Node
	Remainder           int
	StartOffset         int
	StartLineFeedCount  int
}

// FindByOffset returns the node containing the given 0-based offset.
// offset <= 0 clamps to the leftmost node with remainder 0; offset >=
// TotalSize() clamps to the rightmost node with remainder equal to its
// piece length.
func (t *Tree) FindByOffset(offset int) FindResult {
	if isNil(t.root) {
		return FindResult{}
	}
	total := t.root.Size()
	if offset <= 0 {
		n := leftmost(t.root)
		return FindResult{Node: n, Remainder: 0, StartOffset: 0, StartLineFeedCount: 0}
	}
	if offset >= total {
		n := rightmost(t.root)
		so, slf := positionOf(n)
		return FindResult{Node: n, Remainder: n.Piece.Length, StartOffset: so, StartLineFeedCount: slf}
	}

	x := t.root
	remaining := offset
	startOffset := 0
	startLineFeedCount := 0
	for !isNil(x) {
		if x.leftSize > remaining {
			x = x.left
			continue
		}
		here := x.Piece.OrderingLength()
		if x.leftSize+here > remaining {
			startOffset += x.leftSize
			startLineFeedCount += x.leftLineFeedCnt
			return FindResult{
				Node:               x,
				Remainder:          remaining - x.leftSize,
				StartOffset:        startOffset,
				StartLineFeedCount: startLineFeedCount,
			}
		}
		remaining -= x.leftSize + here
		startOffset += x.leftSize + here
		startLineFeedCount += x.leftLineFeedCnt + x.Piece.LineFeedCount
		x = x.right
	}
	// Unreachable while the size aggregates are consistent with total.
	return FindResult{}
}

// FindByLineNumber returns the position where logical line k (1-based)
// begins: the node immediately following the (k-1)-th line-feed piece
// (since the leading sentinel line-feed piece is itself the first
// line-feed-bearing node, this is the same as asking for the
// successor of the k-th such node). k is clamped to
// [1, TotalLineCount()]. Node is nil when line k has no following
// content (the implicit trailing empty line after the last newline).
func (t *Tree) FindByLineNumber(k int) FindResult {
	if isNil(t.root) {
		return FindResult{}
	}
	totalLF := t.root.LineFeedCount()
	totalLines := totalLF + 1
	if k < 1 {
		k = 1
	}
	if k > totalLines {
		k = totalLines
	}
	rank := k
	if rank > totalLF {
		rank = totalLF
	}
	if rank < 1 {
		n := leftmost(t.root)
		return FindResult{Node: n, Remainder: 0, StartOffset: 0, StartLineFeedCount: 0}
	}

	x := t.root
	remaining := rank
	for !isNil(x) {
		if x.leftLineFeedCnt >= remaining {
			x = x.left
			continue
		}
		remaining -= x.leftLineFeedCnt
		if x.Piece.LineFeedCount >= remaining {
			break
		}
		remaining -= x.Piece.LineFeedCount
		x = x.right
	}
	if isNil(x) {
		return FindResult{}
	}

	start := successor(x)
	if isNil(start) {
		last := rightmost(t.root)
		so, slf := positionOf(last)
		return FindResult{
			Node:               nil,
			Remainder:          0,
			StartOffset:        so + last.Piece.OrderingLength(),
			StartLineFeedCount: slf + last.Piece.LineFeedCount,
		}
	}
	so, slf := positionOf(start)
	return FindResult{Node: start, Remainder: 0, StartOffset: so, StartLineFeedCount: slf}
}
