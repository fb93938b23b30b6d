package history

import "github.com/textmodel/piecetree/internal/engine/diff"

// Group is a bracketed series of Changes treated as one undo/redo
// unit. An ungrouped Push becomes a singleton Group.
type Group []Change

// forwardDiffs concatenates every change's own recorded diffs in
// push order — what Redo returns.
func (g Group) forwardDiffs() []diff.Diff {
	var out []diff.Diff
	for _, c := range g {
		out = append(out, c.Diffs()...)
	}
	return out
}

// inverseDiffs concatenates every change's diffs in reverse push
// order, each flipped — what Undo returns, matching the reverse order
// Undo actually applies the changes in.
func (g Group) inverseDiffs() []diff.Diff {
	var out []diff.Diff
	for i := len(g) - 1; i >= 0; i-- {
		out = append(out, diff.FlipAll(g[i].Diffs())...)
	}
	return out
}
