package rbtree

import (
	"fmt"
	"testing"
	"testing/quick"

	"github.com/textmodel/piecetree/internal/engine/piece"
)

func textPiece(length int) piece.Piece {
	return piece.New(0, 0, length, 0, nil)
}

// validate walks the whole tree and re-derives every aggregate and
// red-black property from scratch, failing the test on any mismatch.
func validate(t *testing.T, tr *Tree) {
	t.Helper()
	root := tr.Root()
	if root == nil {
		return
	}
	if root.color != Black {
		t.Fatalf("root is not black")
	}
	var walk func(n *Node) (size, lf, cnt, blackHeight int)
	walk = func(n *Node) (size, lf, cnt, blackHeight int) {
		if n == nil {
			return 0, 0, 0, 1
		}
		if n.color == Red {
			for _, c := range []*Node{n.Left(), n.Right()} {
				if c != nil && c.color == Red {
					t.Fatalf("red node has red child")
				}
			}
		}
		ls, llf, lc, lbh := walk(n.Left())
		rs, rlf, rc, rbh := walk(n.Right())
		if n.leftSize != ls {
			t.Fatalf("leftSize = %d, want %d", n.leftSize, ls)
		}
		if n.rightSize != rs {
			t.Fatalf("rightSize = %d, want %d", n.rightSize, rs)
		}
		if n.leftLineFeedCnt != llf {
			t.Fatalf("leftLineFeedCnt = %d, want %d", n.leftLineFeedCnt, llf)
		}
		if n.rightLineFeedCnt != rlf {
			t.Fatalf("rightLineFeedCnt = %d, want %d", n.rightLineFeedCnt, rlf)
		}
		if n.leftNodeCnt != lc {
			t.Fatalf("leftNodeCnt = %d, want %d", n.leftNodeCnt, lc)
		}
		if n.rightNodeCnt != rc {
			t.Fatalf("rightNodeCnt = %d, want %d", n.rightNodeCnt, rc)
		}
		if lbh != rbh {
			t.Fatalf("unequal black height: left=%d right=%d", lbh, rbh)
		}
		bh := lbh
		if n.color == Black {
			bh++
		}
		return ls + rs + n.Piece.OrderingLength(), llf + rlf + n.Piece.LineFeedCount, lc + rc + 1, bh
	}
	walk(root)
}

func TestInsertAfterBuildsOrderedTree(t *testing.T) {
	tr := New()
	var last *Node
	for i := 1; i <= 20; i++ {
		last = tr.InsertAfter(textPiece(i), last)
	}
	validate(t, tr)
	if got := tr.TotalNodeCount(); got != 20 {
		t.Fatalf("TotalNodeCount = %d, want 20", got)
	}

	want := 0
	for i := 1; i <= 20; i++ {
		want += i
	}
	if got := tr.TotalSize(); got != want {
		t.Fatalf("TotalSize = %d, want %d", got, want)
	}

	n := tr.First()
	for i := 1; i <= 20; i++ {
		if n == nil {
			t.Fatalf("tree ended early at i=%d", i)
		}
		if n.Piece.Length != i {
			t.Fatalf("node %d has length %d, want %d", i, n.Piece.Length, i)
		}
		n = tr.Successor(n)
	}
	if n != nil {
		t.Fatalf("tree has more nodes than expected")
	}
}

func TestInsertBeforeTieBreak(t *testing.T) {
	tr := New()
	a := tr.InsertAfter(textPiece(1), nil)
	b := tr.InsertAfter(textPiece(2), a)
	// b.left is free: InsertBefore(x, b) should become b's new
	// immediate predecessor, landing between a and b.
	x := tr.InsertBefore(textPiece(3), b)
	validate(t, tr)

	if tr.Predecessor(b) != x {
		t.Fatalf("x is not b's predecessor")
	}
	if tr.Successor(x) != b {
		t.Fatalf("b is not x's successor")
	}
	if tr.Predecessor(x) != a {
		t.Fatalf("a is not x's predecessor")
	}
}

func TestDeleteRestoresInvariants(t *testing.T) {
	tr := New()
	var nodes []*Node
	var last *Node
	for i := 1; i <= 30; i++ {
		last = tr.InsertAfter(textPiece(i), last)
		nodes = append(nodes, last)
	}
	validate(t, tr)

	// delete every other node
	for i := 0; i < len(nodes); i += 2 {
		tr.Delete(nodes[i])
		validate(t, tr)
	}
	if got := tr.TotalNodeCount(); got != 15 {
		t.Fatalf("TotalNodeCount after deletes = %d, want 15", got)
	}
}

func TestDeleteAllNodes(t *testing.T) {
	tr := New()
	var nodes []*Node
	var last *Node
	for i := 1; i <= 10; i++ {
		last = tr.InsertAfter(textPiece(i), last)
		nodes = append(nodes, last)
	}
	for _, n := range nodes {
		tr.Delete(n)
		validate(t, tr)
	}
	if tr.Root() != nil {
		t.Fatalf("tree should be empty")
	}
	if tr.TotalSize() != 0 {
		t.Fatalf("TotalSize should be 0")
	}
}

func TestFindByOffset(t *testing.T) {
	tr := New()
	var last *Node
	for i := 0; i < 5; i++ {
		last = tr.InsertAfter(textPiece(10), last)
	}
	// offsets 0..49, ten per node
	for offset := 0; offset < 50; offset++ {
		res := tr.FindByOffset(offset)
		wantRemainder := offset % 10
		if res.Remainder != wantRemainder {
			t.Errorf("FindByOffset(%d).Remainder = %d, want %d", offset, res.Remainder, wantRemainder)
		}
		if res.StartOffset != offset-wantRemainder {
			t.Errorf("FindByOffset(%d).StartOffset = %d, want %d", offset, res.StartOffset, offset-wantRemainder)
		}
	}
	// clamp below zero
	if res := tr.FindByOffset(-5); res.Remainder != 0 || res.Node != tr.First() {
		t.Errorf("FindByOffset(-5) did not clamp to leftmost")
	}
	// clamp past the end
	if res := tr.FindByOffset(1000); res.Node != tr.Last() || res.Remainder != 10 {
		t.Errorf("FindByOffset(1000) did not clamp to rightmost")
	}
}

func TestFindByLineNumber(t *testing.T) {
	tr := New()
	// leading sentinel line-feed piece (line-zero anchor)
	sentinelLF := piece.New(0, 0, 1, 1, nil)
	head := tr.InsertAfter(sentinelLF, nil)

	// "line one text" + \n, then "line two text" (no trailing \n)
	n1 := tr.InsertAfter(textPiece(14), head)
	lf1 := tr.InsertAfter(piece.New(0, 14, 1, 1, nil), n1)
	tr.InsertAfter(textPiece(14), lf1)

	validate(t, tr)

	if got := tr.TotalLineCount(); got != 3 {
		t.Fatalf("TotalLineCount = %d, want 3", got)
	}

	line1 := tr.FindByLineNumber(1)
	if line1.Node != n1 {
		t.Errorf("line 1 should start at n1")
	}
	line2 := tr.FindByLineNumber(2)
	if line2.StartOffset != 16 {
		t.Errorf("line 2 StartOffset = %d, want 16", line2.StartOffset)
	}
	// line 3 lies past the last line-feed-bearing node, so it resolves
	// to the same start as line 2 (the trailing line holding the second
	// text piece).
	line3 := tr.FindByLineNumber(3)
	if line3.StartOffset != 16 {
		t.Errorf("line 3 StartOffset = %d, want 16", line3.StartOffset)
	}
	// clamp above range
	clamped := tr.FindByLineNumber(100)
	if clamped.StartOffset != line3.StartOffset {
		t.Errorf("FindByLineNumber(100) did not clamp to last line")
	}
}

func TestNodeAt(t *testing.T) {
	tr := New()
	var last *Node
	var nodes []*Node
	for i := 1; i <= 15; i++ {
		last = tr.InsertAfter(textPiece(i), last)
		nodes = append(nodes, last)
	}
	for i, n := range nodes {
		if got := tr.NodeAt(i + 1); got != n {
			t.Errorf("NodeAt(%d) mismatch", i+1)
		}
	}
	if tr.NodeAt(0) != nil {
		t.Errorf("NodeAt(0) should be nil")
	}
	if tr.NodeAt(16) != nil {
		t.Errorf("NodeAt(16) should be nil")
	}
}

// TestQuickInsertDeleteSequences property-checks that arbitrary
// sequences of append-at-end inserts followed by random-order deletes
// always leave the tree's red-black and aggregate invariants intact.
func TestQuickInsertDeleteSequences(t *testing.T) {
	f := func(lengths []uint8, deleteOrder []uint8) bool {
		if len(lengths) == 0 || len(lengths) > 200 {
			return true
		}
		tr := New()
		var nodes []*Node
		var last *Node
		for _, l := range lengths {
			last = tr.InsertAfter(textPiece(int(l)+1), last)
			nodes = append(nodes, last)
		}
		quietValidate(tr)

		for _, idx := range deleteOrder {
			if len(nodes) == 0 {
				break
			}
			i := int(idx) % len(nodes)
			tr.Delete(nodes[i])
			nodes = append(nodes[:i], nodes[i+1:]...)
			if !quietValidate(tr) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}

// quietValidate is validate's non-*testing.T twin, used by the
// property test above where a failure should report false rather than
// call Fatalf from inside a quick.Check worker.
func quietValidate(tr *Tree) bool {
	root := tr.Root()
	if root == nil {
		return true
	}
	if root.color != Black {
		return false
	}
	ok := true
	var walk func(n *Node) (size, lf, cnt, blackHeight int)
	walk = func(n *Node) (size, lf, cnt, blackHeight int) {
		if n == nil {
			return 0, 0, 0, 1
		}
		if n.color == Red {
			if c := n.Left(); c != nil && c.color == Red {
				ok = false
			}
			if c := n.Right(); c != nil && c.color == Red {
				ok = false
			}
		}
		ls, llf, lc, lbh := walk(n.Left())
		rs, rlf, rc, rbh := walk(n.Right())
		if n.leftSize != ls || n.rightSize != rs ||
			n.leftLineFeedCnt != llf || n.rightLineFeedCnt != rlf ||
			n.leftNodeCnt != lc || n.rightNodeCnt != rc {
			ok = false
		}
		if lbh != rbh {
			ok = false
		}
		bh := lbh
		if n.color == Black {
			bh++
		}
		return ls + rs + n.Piece.OrderingLength(), llf + rlf + n.Piece.LineFeedCount, lc + rc + 1, bh
	}
	walk(root)
	return ok
}

func FuzzInsertAfterSequence(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5})
	f.Add([]byte{})
	f.Add([]byte{255, 0, 128})
	f.Fuzz(func(t *testing.T, lengths []byte) {
		if len(lengths) > 500 {
			t.Skip("input too large")
		}
		tr := New()
		var last *Node
		for _, l := range lengths {
			last = tr.InsertAfter(textPiece(int(l)+1), last)
		}
		validate(t, tr)
		if !quietValidate(tr) {
			t.Fatalf("invariant violated for lengths=%v", lengths)
		}
	})
}

func ExampleTree_basic() {
	tr := New()
	a := tr.InsertAfter(textPiece(5), nil)
	tr.InsertAfter(textPiece(3), a)
	fmt.Println(tr.TotalSize(), tr.TotalNodeCount())
	// Output: 8 2
}
