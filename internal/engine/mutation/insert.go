package mutation

import (
	"unicode/utf16"

	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/piece"
)

// Insert splits or walks to the right anchor node for offset, then
// walks text code unit by code unit, coalescing
// into the anchor when the call carries no meta and the anchor is a
// non-line-feed piece ending at the tail of the append buffer (the
// anchor's own meta is not consulted), and otherwise creating fresh
// pieces (a TEXT piece per run, a LINE_FEED piece per newline).
func (e *Engine) Insert(offset int, text string, m piece.Meta) InsertResult {
	units := utf16.Encode([]rune(text))
	appendStart := e.Pool.Len(0)

	if len(units) == 0 {
		if m == nil {
			return InsertResult{}
		}
		return e.insertNonText(offset, m)
	}

	find := e.Tree.FindByOffset(offset)
	baseLine := find.StartLineFeedCount
	anchor := find.Node

	switch {
	case find.Remainder == 0:
		if anchor != nil {
			anchor = e.Tree.Predecessor(anchor)
		}
	case anchor != nil && find.Remainder < anchor.Piece.Length:
		left, _ := e.splitNode(anchor, find.Remainder)
		anchor = left
	}

	isEmptyMeta := m == nil
	isContinuousAppend := anchor != nil &&
		anchor.Piece.BufferIndex == 0 &&
		anchor.Piece.Start+anchor.Piece.Length == e.Pool.Len(0)
	isNotLineBreak := anchor == nil || anchor.Piece.LineFeedCount == 0

	firstLineFeedEmitted := false
	lineFeedsInserted := 0

	flushText := func(run []uint16) {
		if len(run) == 0 && isEmptyMeta {
			return
		}
		txt := string(utf16.Decode(run))
		if !firstLineFeedEmitted && isContinuousAppend && isEmptyMeta && isNotLineBreak && txt != "" {
			_, n := e.Pool.Append(txt)
			anchor.Piece.Length += n
			e.Tree.Touch(anchor)
			return
		}
		if txt == "" && isEmptyMeta {
			return
		}
		start, n := e.Pool.Append(txt)
		p := piece.New(0, start, n, 0, m.Clone())
		newNode := e.Tree.InsertAfter(p, anchor)
		anchor = newNode
	}

	var run []uint16
	for _, u := range units {
		if u == '\n' {
			flushText(run)
			run = run[:0]

			start, n := e.Pool.Append("\n")
			lf := piece.New(0, start, n, 1, nil)
			anchor = e.Tree.InsertAfter(lf, anchor)
			lineFeedsInserted++
			firstLineFeedEmitted = true
			continue
		}
		run = append(run, u)
	}
	flushText(run)

	diffs := []diff.Diff{{Type: diff.Replace, LineNumber: baseLine}}
	for i := 1; i <= lineFeedsInserted; i++ {
		diffs = append(diffs, diff.Diff{Type: diff.Insert, LineNumber: baseLine + i})
	}

	return InsertResult{
		Diffs:       diffs,
		AppendStart: appendStart,
		AppendLen:   len(units),
	}
}

// insertNonText handles the text == "" && meta != nil case: a single
// non-text piece carrying only metadata, no buffer slice.
func (e *Engine) insertNonText(offset int, m piece.Meta) InsertResult {
	find := e.Tree.FindByOffset(offset)
	baseLine := find.StartLineFeedCount
	anchor := find.Node

	switch {
	case find.Remainder == 0:
		if anchor != nil {
			anchor = e.Tree.Predecessor(anchor)
		}
	case anchor != nil && find.Remainder < anchor.Piece.Length:
		left, _ := e.splitNode(anchor, find.Remainder)
		anchor = left
	}

	p := piece.New(-1, 0, 0, 0, m.Clone())
	e.Tree.InsertAfter(p, anchor)

	return InsertResult{
		Diffs: []diff.Diff{{Type: diff.Replace, LineNumber: baseLine}},
	}
}
