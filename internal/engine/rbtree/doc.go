// Package rbtree is the augmented red-black tree at the centre of the
// piece tree. Every node carries a piece.Piece and six derived values
// recomputed bottom-up after any structural change: leftSize,
// rightSize, leftLineFeedCnt, rightLineFeedCnt, leftNodeCnt and
// rightNodeCnt.
//
// # Sentinel
//
// A single shared black sentinel stands in for every absent child and
// for the root's parent. Rather than writing to the sentinel's parent
// field the way the classical presentation of the algorithm does (see
// deleteFixup's xParent parameter), this implementation threads the
// logical parent explicitly wherever the sentinel would otherwise need
// a transient parent pointer. The sentinel itself is never mutated
// after package init.
//
// # Ownership
//
// A Tree is single-owner: nodes hold raw parent back-pointers, not
// arena indices, because nothing in this engine aliases a tree's nodes
// across two owners.
//
// # Three order-statistic searches
//
// The same aggregates serve three different rank queries:
//
//	NodeAt(k)            // k-th node, by node count
//	FindByOffset(off)     // node containing code-unit offset off
//	FindByLineNumber(k)   // start of logical line k
package rbtree
