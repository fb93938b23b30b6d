// Package engine is the public facade over the piece-tree core: it
// composes buffer, rbtree, mutation, meta and history into the single
// PieceTree type external callers construct and call.
//
// # Architecture
//
// PieceTree is built on several sub-packages:
//
//   - piece: the Piece value type and its derived classification
//   - buffer: the append/original buffer pool every Piece addresses
//   - rbtree: the order-statistic red-black tree of Pieces
//   - mutation: the Insert/Delete/Format algorithms run against it
//   - meta: the deep-merge producing forward/inverse metadata patches
//   - history: the grouped, reversible change stack
//   - diff: the line-level wire shape every mutation emits
//
// # Thread Safety
//
// Every PieceTree method is thread-safe: a sync.RWMutex serialises
// writes and allows concurrent reads. Concurrent mutation from multiple
// writers is not a supported editing model — a piece tree represents
// one logical editing session — but a public Go type whose
// zero-concurrency contract is undocumented invites misuse. The mutex
// makes the single-writer contract an enforced invariant rather than a
// documented-only one.
//
// # Basic Usage
//
//	t := engine.New()
//	t.Insert(0, "Hello, World!", nil)
//	t.GetText() // "Hello, World!"
//
//	t.Delete(7, 5)
//	t.GetText() // "Hello, !"
//
// # Offsets
//
// Every offset PieceTree accepts or returns is 0-based and measured in
// UTF-16-style code units within the concatenated text — the engine's
// counting convention throughout.
//
// # Loading Initial Content
//
//	t := engine.New(engine.WithInitialText("line one\nline two\n"))
//	t.GetLineCount() // 3 (the trailing empty line always exists)
//
//	t := engine.NewFromLines([]string{"line one", "line two"})
//
// # Metadata and Formatting
//
// Format merges a metadata map into every piece overlapping a range:
//
//	t := engine.New(engine.WithInitialText("bold this\n"))
//	t.FormatText(0, 4, map[string]any{"bold": true})
//	t.GetLineMeta(1) // nil: FormatText touched content pieces, not the
//	                 // line's own terminator piece
//
//	t.FormatLine(1, map[string]any{"heading": 1})
//	t.GetLineMeta(1) // map[string]any{"heading": float64(1)}: merged
//	                 // metadata goes through JSON, so numbers are float64
//
// # Undo/Redo
//
//	t := engine.New()
//	t.Insert(0, "hello", nil)
//	t.Insert(5, " world", nil)
//
//	t.Undo() // "hello"
//	t.Undo() // ""
//	t.Redo() // "hello"
//	t.Redo() // "hello world"
//
// Group several mutations into one undo unit:
//
//	t.StartChange()
//	t.Insert(0, "a", nil)
//	t.Insert(1, "b", nil)
//	t.EndChange()
//	t.Undo() // undoes both inserts at once
//
// Change(fn) brackets a callback the same way, swallowing any error fn
// returns so the group still closes consistently:
//
//	t.Change(func() error {
//	    if _, err := t.Insert(0, "x", nil); err != nil {
//	        return err
//	    }
//	    _, err := t.Delete(0, 1)
//	    return err
//	})
//
// # Read-Only Mode
//
//	t := engine.New(
//	    engine.WithInitialText("frozen"),
//	    engine.WithReadOnly(),
//	)
//	_, err := t.Insert(0, "x", nil)
//	// err == engine.ErrReadOnly
package engine
