// Package history provides undo/redo for the piece tree's mutations.
//
// # Changes
//
// A Change is a single reversible mutation, recorded after the fact
// from the result the mutation package returns. Built-in changes are
// InsertChange, DeleteChange, and FormatChange. Each knows how to undo
// and redo itself against a *mutation.Engine without re-deriving
// anything: InsertChange replays from the append buffer, DeleteChange
// re-inserts captured pieces, FormatChange applies recorded inverse
// patches.
//
// # Groups
//
// A Group is a slice of Changes undone or redone as one unit. An
// ungrouped Push becomes a singleton Group.
//
// # Stack
//
// Stack owns the undo and redo slices of Group:
//
//	s := history.New(eng)
//	s.Push(history.NewInsertChange(offset, res, meta))
//	s.Undo()
//	s.Redo()
//
// # Grouping
//
// Multiple changes can be bracketed into one undo unit:
//
//	s.StartChange()
//	// ... multiple pushes ...
//	s.EndChange()
//
// Change(fn) brackets fn the same way and swallows any error fn
// returns, keeping the group consistent either way.
package history
