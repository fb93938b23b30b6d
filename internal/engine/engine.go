package engine

import (
	"strings"
	"sync"

	"github.com/textmodel/piecetree/internal/engine/buffer"
	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/history"
	"github.com/textmodel/piecetree/internal/engine/mutation"
	"github.com/textmodel/piecetree/internal/engine/piece"
	"github.com/textmodel/piecetree/internal/engine/rbtree"
)

// PieceTree is the public facade over the buffer pool, the
// order-statistic red-black tree, the mutation engine and the change
// stack: the single type external callers construct and call. Every
// method is guarded by mu so that single-writer access is an enforced
// invariant, not a documented-only one.
type PieceTree struct {
	mu sync.RWMutex

	tree *rbtree.Tree
	pool *buffer.Pool
	eng  *mutation.Engine
	hist *history.Stack

	tabWidth int
	readOnly bool
}

// New returns an empty PieceTree: a single leading line-feed piece, so
// line 1 always exists.
func New(opts ...Option) *PieceTree {
	return build(nil, opts)
}

// NewFromLines returns a PieceTree seeded with the given lines: a
// leading line-feed piece followed by each line's own pieces.
func NewFromLines(lines []string, opts ...Option) *PieceTree {
	return build(lines, opts)
}

func build(lines []string, opts []Option) *PieceTree {
	cfg := newConfig()
	if lines != nil {
		cfg.initialLines = lines
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tree := rbtree.New()
	pool := buffer.New()
	start, n := pool.Append("\n")
	tree.InsertAfter(piece.New(0, start, n, 1, nil), nil)

	eng := mutation.New(tree, pool)
	t := &PieceTree{
		tree:     tree,
		pool:     pool,
		eng:      eng,
		hist:     history.New(eng),
		tabWidth: cfg.tabWidth,
		readOnly: cfg.readOnly,
	}
	t.hist.SetMaxGroups(cfg.maxUndoEntries)
	t.hist.SetChangeErrorHandler(cfg.onChangeError)

	if text := strings.Join(cfg.initialLines, "\n"); text != "" {
		eng.Insert(1, text, nil)
	}

	return t
}

// splitLines splits text into the lines WithInitialText feeds to the
// same join-with-"\n" construction path as WithInitialLines.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// toInternalOffset converts an external offset to an internal tree
// offset: external offsets are 0-based into the concatenated text;
// internal tree offsets are biased by +1 for the leading line-feed
// sentinel, clamping to 1 (not 0) when the external offset is
// non-positive.
func toInternalOffset(external int) int {
	if external <= 0 {
		return 1
	}
	return external + 1
}

// TabWidth returns the tab width this tree was configured with. The
// engine itself has no column/rendering concept; this is configuration
// a façade layer reads back, per WithTabWidth's doc comment.
func (t *PieceTree) TabWidth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tabWidth
}

// SetTabWidth updates the tab width configuration.
func (t *PieceTree) SetTabWidth(width int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width > 0 {
		t.tabWidth = width
	}
}

// IsReadOnly reports whether mutating calls return ErrReadOnly.
func (t *PieceTree) IsReadOnly() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.readOnly
}

// ============================================================================
// Mutations
// ============================================================================

// Insert inserts text with optional metadata at offset. text may only
// be empty when meta is non-nil (it then represents a non-text piece);
// an empty text with no meta is ErrEmptyInsertText.
func (t *PieceTree) Insert(offset int, text string, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readOnly {
		return nil, ErrReadOnly
	}
	if text == "" && meta == nil {
		return nil, ErrEmptyInsertText
	}

	m := piece.Meta(meta)
	internal := toInternalOffset(offset)
	res := t.eng.Insert(internal, text, m)
	t.hist.Push(history.NewInsertChange(internal, res, m))
	return res.Diffs, nil
}

// Delete removes length code units starting at offset.
func (t *PieceTree) Delete(offset, length int) ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readOnly {
		return nil, ErrReadOnly
	}
	if length <= 0 {
		return nil, nil
	}

	internal := toInternalOffset(offset)
	res := t.eng.Delete(internal, length)
	t.hist.Push(history.NewDeleteChange(internal, length, res))
	return res.Diffs, nil
}

// Format merges meta into every piece overlapping [offset,
// offset+length), regardless of type.
func (t *PieceTree) Format(offset, length int, meta map[string]any) ([]diff.Diff, error) {
	return t.formatFiltered(offset, length, meta, mutation.FilterAll)
}

// FormatText merges meta into every TEXT piece overlapping the range;
// other piece types are left untouched.
func (t *PieceTree) FormatText(offset, length int, meta map[string]any) ([]diff.Diff, error) {
	return t.formatFiltered(offset, length, meta, mutation.FilterText)
}

// FormatNonText merges meta into every NON_TEXT piece overlapping the
// range; other piece types are left untouched.
func (t *PieceTree) FormatNonText(offset, length int, meta map[string]any) ([]diff.Diff, error) {
	return t.formatFiltered(offset, length, meta, mutation.FilterNonText)
}

func (t *PieceTree) formatFiltered(offset, length int, meta map[string]any, filter mutation.TypeFilter) ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readOnly {
		return nil, ErrReadOnly
	}
	if length <= 0 || meta == nil {
		return nil, nil
	}

	m := piece.Meta(meta)
	internal := toInternalOffset(offset)
	res := t.eng.Format(internal, length, m, filter)
	if len(res.PiecePatches) > 0 {
		t.hist.Push(history.NewFormatChange(internal, length, m, filter, res))
	}
	return res.Diffs, nil
}

// FormatBeforeFirstLine merges meta into the leading line-feed
// sentinel (the line-zero anchor), as a proper entry point instead of
// requiring callers to pass a magic offset into Format.
func (t *PieceTree) FormatBeforeFirstLine(meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.readOnly {
		return nil, ErrReadOnly
	}
	if meta == nil {
		return nil, nil
	}

	m := piece.Meta(meta)
	res := t.eng.Format(0, 1, m, mutation.FilterAll)
	if len(res.PiecePatches) > 0 {
		t.hist.Push(history.NewFormatChange(0, 1, m, mutation.FilterAll, res))
	}
	return res.Diffs, nil
}

// ============================================================================
// Line-level helpers
// ============================================================================

// lineStartOffset returns the external offset where line (1-based)
// begins. Out-of-range line numbers clamp, matching
// rbtree.FindByLineNumber's own clamp.
func (t *PieceTree) lineStartOffset(line int) int {
	find := t.tree.FindByLineNumber(line)
	return find.StartOffset - 1
}

// lineTerminatorOffset returns the external offset of the single-code
// -unit line-feed piece that terminates line, and true, if one exists.
// It does not exist for the final, unterminated line (the implicit
// trailing segment after the last real newline) — see DESIGN.md's Open
// Question decision on Line.Meta/GetLineMeta.
func (t *PieceTree) lineTerminatorOffset(line int) (int, bool) {
	count := t.getLineCountLocked()
	if line < 1 || line >= count {
		return 0, false
	}
	return t.lineStartOffset(line+1) - 1, true
}

// InsertLineBreak inserts a single "\n" at the given line/column
// position.
func (t *PieceTree) InsertLineBreak(line, column int) ([]diff.Diff, error) {
	t.mu.Lock()
	offset := t.lineStartOffset(line) + column
	t.mu.Unlock()
	return t.Insert(offset, "\n", nil)
}

// InsertLine inserts text followed by a line break at the start of
// line, pushing line and every line after it down by one.
func (t *PieceTree) InsertLine(line int, text string, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	offset := t.lineStartOffset(line)
	t.mu.Unlock()
	return t.Insert(offset, text+"\n", meta)
}

// DeleteLine removes line's content and the line break that
// terminates it (or, for the final line, just its content, since it
// has no terminator of its own). Out-of-range line numbers return an
// empty diff list.
func (t *PieceTree) DeleteLine(line int) ([]diff.Diff, error) {
	t.mu.Lock()
	count := t.getLineCountLocked()
	if line < 1 || line > count {
		t.mu.Unlock()
		return nil, nil
	}
	start := t.lineStartOffset(line)
	var end int
	if line < count {
		end = t.lineStartOffset(line + 1)
	} else {
		end = t.getLengthLocked()
	}
	t.mu.Unlock()
	return t.Delete(start, end-start)
}

// FormatLine merges meta into the metadata of the line-feed piece
// terminating line. The final, unterminated line has no such piece and
// the call is a no-op.
func (t *PieceTree) FormatLine(line int, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	offset, ok := t.lineTerminatorOffset(line)
	t.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return t.Format(offset, 1, meta)
}

// FormatInLine merges meta into every piece overlapping [column,
// column+length) within line, regardless of type.
func (t *PieceTree) FormatInLine(line, column, length int, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	offset := t.lineStartOffset(line) + column
	t.mu.Unlock()
	return t.Format(offset, length, meta)
}

// FormatTextInLine merges meta into every TEXT piece overlapping
// [column, column+length) within line.
func (t *PieceTree) FormatTextInLine(line, column, length int, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	offset := t.lineStartOffset(line) + column
	t.mu.Unlock()
	return t.FormatText(offset, length, meta)
}

// FormatNonTextInLine merges meta into every NON_TEXT piece
// overlapping [column, column+length) within line.
func (t *PieceTree) FormatNonTextInLine(line, column, length int, meta map[string]any) ([]diff.Diff, error) {
	t.mu.Lock()
	offset := t.lineStartOffset(line) + column
	t.mu.Unlock()
	return t.FormatNonText(offset, length, meta)
}

// ============================================================================
// Queries
// ============================================================================

// GetText returns the full concatenated text, excluding the leading
// line-feed sentinel.
func (t *PieceTree) GetText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var sb strings.Builder
	first := true
	t.tree.ForEach(func(n *rbtree.Node) bool {
		if first {
			first = false
			return true
		}
		sb.WriteString(t.pool.Text(n.Piece.BufferIndex, n.Piece.Start, n.Piece.Length))
		return true
	})
	return sb.String()
}

// GetTextInRange returns the text in [from, to): half-open, 0-based,
// to exclusive.
func (t *PieceTree) GetTextInRange(from, to int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var sb strings.Builder
	for _, p := range t.getPiecesInRangeLocked(from, to) {
		sb.WriteString(t.pool.Text(p.BufferIndex, p.Start, p.Length))
	}
	return sb.String()
}

// GetLine returns lineNumber's content, 1-based; a number below 1
// clamps to line 1. A line with no content, and a line number past the
// last line, come back in the empty single-piece form.
func (t *PieceTree) GetLine(lineNumber int) Line {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLineLocked(lineNumber)
}

func (t *PieceTree) getLineLocked(lineNumber int) Line {
	count := t.getLineCountLocked()
	if lineNumber < 1 {
		lineNumber = 1
	}
	if lineNumber > count {
		return emptyLine()
	}

	start := t.lineStartOffset(lineNumber)
	var end int
	if lineNumber < count {
		end = t.lineStartOffset(lineNumber+1) - 1
	} else {
		end = t.getLengthLocked()
	}

	pieces := t.getPiecesInRangeLocked(start, end)
	if len(pieces) == 0 {
		line := emptyLine()
		if m, ok := t.lineTerminatorMetaLocked(lineNumber); ok {
			line.Meta = m
		}
		return line
	}

	out := make([]LinePiece, len(pieces))
	for i, p := range pieces {
		out[i] = LinePiece{
			Text:   t.pool.Text(p.BufferIndex, p.Start, p.Length),
			Length: p.Length,
			Meta:   p.Meta,
		}
	}
	line := Line{Pieces: out}
	if m, ok := t.lineTerminatorMetaLocked(lineNumber); ok {
		line.Meta = m
	}
	return line
}

func (t *PieceTree) lineTerminatorMetaLocked(line int) (piece.Meta, bool) {
	offset, ok := t.lineTerminatorOffset(line)
	if !ok {
		return nil, false
	}
	pieces := t.getPiecesInRangeLocked(offset, offset+1)
	if len(pieces) == 0 {
		return nil, false
	}
	return pieces[0].Meta, true
}

// GetLines returns every logical line in order.
func (t *PieceTree) GetLines() []Line {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := t.getLineCountLocked()
	out := make([]Line, count)
	for i := 1; i <= count; i++ {
		out[i-1] = t.getLineLocked(i)
	}
	return out
}

// GetPieces returns every piece in in-order sequence, excluding the
// leading line-feed sentinel.
func (t *PieceTree) GetPieces() []piece.Piece {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []piece.Piece
	first := true
	t.tree.ForEach(func(n *rbtree.Node) bool {
		if first {
			first = false
			return true
		}
		out = append(out, n.Piece.Clone())
		return true
	})
	return out
}

// GetPiecesInRange returns the pieces overlapping [from, to), clipped
// to the boundary so a partially covered piece at either edge is
// returned with only its overlapping slice.
func (t *PieceTree) GetPiecesInRange(from, to int) []piece.Piece {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getPiecesInRangeLocked(from, to)
}

func (t *PieceTree) getPiecesInRangeLocked(from, to int) []piece.Piece {
	length := t.getLengthLocked()
	if from < 0 {
		from = 0
	}
	if to > length {
		to = length
	}
	if from >= to {
		return nil
	}

	internalFrom := from + 1
	internalTo := to + 1

	find := t.tree.FindByOffset(internalFrom)
	n := find.Node
	if n == nil {
		return nil
	}
	pos := internalFrom - find.Remainder

	var out []piece.Piece
	for n != nil && pos < internalTo {
		pieceStart := pos
		pieceEnd := pos + n.Piece.OrderingLength()
		clipStart := max(pieceStart, internalFrom)
		clipEnd := min(pieceEnd, internalTo)
		if clipEnd > clipStart {
			out = append(out, t.clipPiece(n.Piece, pieceStart, clipStart, clipEnd))
		}
		pos = pieceEnd
		n = t.tree.Successor(n)
	}
	return out
}

// clipPiece returns a copy of p trimmed to [clipStart, clipEnd), given
// that p's own span begins at pieceStart (all in internal-offset
// terms). Non-text pieces have no buffer slice to trim and are
// returned as-is.
func (t *PieceTree) clipPiece(p piece.Piece, pieceStart, clipStart, clipEnd int) piece.Piece {
	out := p.Clone()
	if p.BufferIndex < 0 {
		return out
	}
	relStart := clipStart - pieceStart
	relLen := clipEnd - clipStart
	out.Start = p.Start + relStart
	out.Length = relLen
	out.LineFeedCount = t.pool.LineFeedCount(p.BufferIndex, out.Start, out.Length)
	return out
}

// GetLength returns the code-unit size of the concatenated text,
// excluding the leading sentinel.
func (t *PieceTree) GetLength() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLengthLocked()
}

func (t *PieceTree) getLengthLocked() int {
	return t.tree.TotalSize() - 1
}

// GetLineCount returns the number of logical lines. The leading
// sentinel's own line feed supplies the "1" that anchors line 1, and
// every other line-feed-bearing piece adds one more line.
func (t *PieceTree) GetLineCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLineCountLocked()
}

func (t *PieceTree) getLineCountLocked() int {
	return t.tree.TotalLineFeedCount()
}

// GetLineMeta returns the metadata of the line-feed piece terminating
// lineNumber, or nil if that line has none (including the final,
// unterminated line).
func (t *PieceTree) GetLineMeta(lineNumber int) map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.lineTerminatorMetaLocked(lineNumber)
	if !ok {
		return nil
	}
	return map[string]any(m)
}

// ============================================================================
// History
// ============================================================================

// StartChange opens a group; every mutation until the matching
// EndChange joins it as one undo/redo unit. It does not hold the
// tree's lock: the bracketed Insert/Delete/Format calls each take it
// individually, the same as if they were called ungrouped.
func (t *PieceTree) StartChange() {
	t.hist.StartChange()
}

// EndChange closes the group opened by StartChange.
func (t *PieceTree) EndChange() {
	t.hist.EndChange()
}

// Change brackets fn between StartChange/EndChange, swallowing any
// error fn returns — see WithChangeErrorHandler to observe it instead.
// fn is expected to call back into this tree's own
// Insert/Delete/Format methods, so — like StartChange/EndChange —
// Change does not hold the tree's lock across the call: doing so would
// deadlock against fn's own calls back into this tree.
func (t *PieceTree) Change(fn func() error) {
	t.hist.Change(fn)
}

// Undo pops the most recent change group and applies its inverse.
func (t *PieceTree) Undo() ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hist.CanUndo() {
		return nil, ErrNothingToUndo
	}
	return t.hist.Undo(), nil
}

// Redo re-applies the most recently undone change group.
func (t *PieceTree) Redo() ([]diff.Diff, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hist.CanRedo() {
		return nil, ErrNothingToRedo
	}
	return t.hist.Redo(), nil
}

// CanUndo reports whether Undo has a group to pop.
func (t *PieceTree) CanUndo() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hist.CanUndo()
}

// CanRedo reports whether Redo has a group to pop.
func (t *PieceTree) CanRedo() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hist.CanRedo()
}
