package mutation

import (
	"testing"
	"testing/quick"

	"github.com/textmodel/piecetree/internal/engine/buffer"
	"github.com/textmodel/piecetree/internal/engine/piece"
	"github.com/textmodel/piecetree/internal/engine/rbtree"
)

// newSeededEngine builds an engine over a tree seeded the way the
// facade's constructor does: a single leading line-feed piece in
// buffer 0, per the lifecycle rule that line 1 always exists.
func newSeededEngine() (*Engine, *rbtree.Tree) {
	pool := buffer.New()
	tree := rbtree.New()
	start, n := pool.Append("\n")
	lf := piece.New(0, start, n, 1, nil)
	tree.InsertAfter(lf, nil)
	return New(tree, pool), tree
}

func collectText(pool *buffer.Pool, tree *rbtree.Tree) string {
	var out []byte
	tree.ForEach(func(n *rbtree.Node) bool {
		out = append(out, pool.Text(n.Piece.BufferIndex, n.Piece.Start, n.Piece.Length)...)
		return true
	})
	return string(out)
}

func nodeCount(tree *rbtree.Tree) int {
	n := 0
	tree.ForEach(func(*rbtree.Node) bool { n++; return true })
	return n
}

// TestContinuousAppendCoalesces mirrors scenario S5: three single
// character inserts immediately following each other must coalesce
// into one piece rather than growing the node count.
func TestContinuousAppendCoalesces(t *testing.T) {
	eng, tree := newSeededEngine()

	eng.Insert(1, "a", nil)
	eng.Insert(2, "b", nil)
	eng.Insert(3, "c", nil)

	if got := collectText(eng.Pool, tree); got != "\nabc" {
		t.Fatalf("text = %q, want %q", got, "\nabc")
	}
	if got := nodeCount(tree); got != 2 {
		t.Fatalf("node count = %d, want 2 (leading line-feed + coalesced text)", got)
	}
}

// TestInsertWithMetaCreatesDedicatedPiece ensures an insert carrying
// meta always gets its own piece rather than coalescing into its
// predecessor. A plain insert immediately after it is, per the
// coalescing rule, still a continuous append onto that piece (the rule
// only looks at the new call's own meta, not the anchor's) — so the
// unmetered character inherits the metered piece's meta by extension.
func TestInsertWithMetaCreatesDedicatedPiece(t *testing.T) {
	eng, tree := newSeededEngine()

	eng.Insert(1, "a", nil)
	eng.Insert(2, "b", piece.Meta{"bold": true})
	eng.Insert(3, "c", nil)

	if got := collectText(eng.Pool, tree); got != "\nabc" {
		t.Fatalf("text = %q, want %q", got, "\nabc")
	}
	if got := nodeCount(tree); got != 3 {
		t.Fatalf("node count = %d, want 3 (line-feed, a, bc)", got)
	}

	var metered *rbtree.Node
	tree.ForEach(func(n *rbtree.Node) bool {
		if n.Piece.Meta != nil {
			metered = n
		}
		return true
	})
	if metered == nil || metered.Piece.Meta["bold"] != true {
		t.Fatalf("expected the coalesced bc piece to carry the bold meta")
	}
}

// TestInsertSplitsMidPiece mirrors scenario S2: inserting inside an
// existing piece must split it at the boundary rather than corrupt
// its content.
func TestInsertSplitsMidPiece(t *testing.T) {
	eng, tree := newSeededEngine()

	eng.Insert(1, "This is a test paragraph.\n", nil)
	eng.Insert(27, "这是测试段落，只有文字\n", nil)

	// internal offset 3 = external offset 2, inside "This is a test
	// paragraph." two characters in.
	eng.Insert(3, "abc", nil)

	var texts []string
	tree.ForEach(func(n *rbtree.Node) bool {
		texts = append(texts, eng.Pool.Text(n.Piece.BufferIndex, n.Piece.Start, n.Piece.Length))
		return true
	})

	want := []string{"\n", "Th", "abc", "is is a test paragraph.", "\n", "这是测试段落，只有文字", "\n"}
	if len(texts) != len(want) {
		t.Fatalf("pieces = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("piece %d = %q, want %q (full: %v)", i, texts[i], want[i], texts)
		}
	}
}

func TestInsertNonTextPiece(t *testing.T) {
	eng, tree := newSeededEngine()

	eng.Insert(1, "ac", nil)
	eng.Insert(2, "", piece.Meta{"kind": "image"})

	var types []piece.Type
	tree.ForEach(func(n *rbtree.Node) bool {
		types = append(types, n.Piece.Type())
		return true
	})
	foundNonText := false
	for _, tp := range types {
		if tp == piece.NonText {
			foundNonText = true
		}
	}
	if !foundNonText {
		t.Fatalf("expected a NON_TEXT piece among %v", types)
	}
}

func TestDeleteWholeNode(t *testing.T) {
	eng, tree := newSeededEngine()
	eng.Insert(1, "abc", nil)

	res := eng.Delete(1, 3)
	if got := collectText(eng.Pool, tree); got != "\n" {
		t.Fatalf("text = %q, want %q", got, "\n")
	}
	if len(res.Pieces) != 1 {
		t.Fatalf("captured pieces = %d, want 1", len(res.Pieces))
	}
}

func TestDeletePartialPrefix(t *testing.T) {
	eng, tree := newSeededEngine()
	eng.Insert(1, "abcdef", nil)

	eng.Delete(2, 2) // internal offset 2 = external offset 1: removes "bc", leaving "adef"
	if got := collectText(eng.Pool, tree); got != "\nadef" {
		t.Fatalf("text = %q, want %q", got, "\nadef")
	}
}

func TestDeleteSpanningMultipleNodes(t *testing.T) {
	eng, tree := newSeededEngine()
	eng.Insert(1, "a", nil)
	eng.Insert(2, "b", piece.Meta{"bold": true})
	eng.Insert(3, "c", nil)

	// "\n" + "a" + "bc"(meta; "c" coalesces into "b") = 3 nodes;
	// delete "abc" entirely.
	eng.Delete(1, 3)
	if got := collectText(eng.Pool, tree); got != "\n" {
		t.Fatalf("text = %q, want %q", got, "\n")
	}
	if got := nodeCount(tree); got != 1 {
		t.Fatalf("node count = %d, want 1", got)
	}
}

func TestFormatMergesMetaAndRecordsInverse(t *testing.T) {
	eng, tree := newSeededEngine()
	eng.Insert(1, "abc", nil)

	res := eng.Format(2, 3, piece.Meta{"bold": true}, FilterAll)
	if len(res.PiecePatches) == 0 {
		t.Fatalf("expected at least one piece patch")
	}

	var n *rbtree.Node
	tree.ForEach(func(x *rbtree.Node) bool {
		if x.Piece.Type() == piece.Text {
			n = x
		}
		return true
	})
	if n == nil || n.Piece.Meta["bold"] != true {
		t.Fatalf("text piece was not formatted: %+v", n)
	}
}

func TestFormatFilterSkipsNonMatchingType(t *testing.T) {
	eng, _ := newSeededEngine()
	eng.Insert(1, "ac", nil)
	eng.Insert(2, "", piece.Meta{"kind": "image"})

	res := eng.Format(1, 4, piece.Meta{"bold": true}, FilterNonText)
	for _, p := range res.PiecePatches {
		if p.Length != 1 {
			t.Fatalf("expected only the non-text piece (length 1) to be patched, got length %d", p.Length)
		}
	}
}

// TestSplitLaw is property 7: splitting a piece at any remainder and
// concatenating the two halves' text must reproduce the original, and
// the halves' line-feed counts must sum to the original's.
func TestSplitLaw(t *testing.T) {
	f := func(prefixLen, suffixLen uint8) bool {
		text := ""
		for i := 0; i < int(prefixLen)%12; i++ {
			text += "x"
		}
		text += "\n"
		for i := 0; i < int(suffixLen)%12; i++ {
			text += "y"
		}
		if len(text) < 2 {
			return true
		}

		pool := buffer.New()
		tree := rbtree.New()
		start, n := pool.Append(text)
		lfCount := piece.LineFeedCount(text)
		p := piece.New(0, start, n, lfCount, nil)
		node := tree.InsertAfter(p, nil)
		eng := New(tree, pool)

		remainder := n / 2
		if remainder == 0 || remainder == n {
			return true
		}
		left, right := eng.Split(node, remainder)

		gotText := pool.Text(left.Piece.BufferIndex, left.Piece.Start, left.Piece.Length) +
			pool.Text(right.Piece.BufferIndex, right.Piece.Start, right.Piece.Length)
		if gotText != text {
			return false
		}
		return left.Piece.LineFeedCount+right.Piece.LineFeedCount == lfCount
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSplitStructuralInsertsClonedMarker(t *testing.T) {
	tree := rbtree.New()
	pool := buffer.New()
	eng := New(tree, pool)

	sp := piece.New(-1, 0, 0, 0, piece.Meta{"kind": "paragraph"}).MarkStructural()
	marker := tree.InsertAfter(sp, nil)

	start, n := pool.Append("body")
	body := tree.InsertAfter(piece.New(0, start, n, 0, nil), marker)

	newMarker := eng.SplitStructural(marker, body)
	if newMarker == nil || !newMarker.Piece.IsStructural() {
		t.Fatalf("expected a new structural node")
	}
	if newMarker.Piece.Meta["kind"] != "paragraph" {
		t.Fatalf("cloned marker lost its meta: %+v", newMarker.Piece.Meta)
	}
}
