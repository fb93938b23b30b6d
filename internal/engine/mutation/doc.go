// Package mutation turns Insert, Delete and Format calls into node
// splits, coalescing decisions and buffer appends against a
// rbtree.Tree and a buffer.Pool. It has no knowledge of undo: every
// method returns a plain result struct (InsertResult, DeleteResult,
// FormatResult) that a caller with undo semantics — ordinarily the
// history package — wraps into its own change record. Keeping that
// dependency one-directional (history depends on mutation, never the
// reverse) avoids an import cycle between the two.
package mutation
