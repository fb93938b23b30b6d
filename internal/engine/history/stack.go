package history

import (
	"sync"

	"github.com/textmodel/piecetree/internal/engine/diff"
	"github.com/textmodel/piecetree/internal/engine/mutation"
)

// Stack is the grouped, reversible change log: every Push joins the
// current group if one is open (StartChange/EndChange), or becomes a
// singleton group otherwise. Undo pops the most recent group and
// applies its changes' inverses in reverse order; Redo re-applies the
// most recently undone group in its original order. Pushing a new
// change outside of a redo always discards the redo stack.
type Stack struct {
	mu sync.Mutex

	eng *mutation.Engine

	undo []Group
	redo []Group

	// maxGroups caps the undo stack's depth. 0 means unbounded. When
	// set, the oldest group is dropped as soon as a push would exceed
	// it, bounding otherwise-unlimited history growth.
	maxGroups int

	grouping bool
	current  Group

	// onChangeError is invoked, if set, with an error a Change(fn)
	// callback returned. Change always swallows that error; this is
	// the opt-in way to observe it without altering that default.
	onChangeError func(error)
}

// New returns an empty Stack recording changes against eng.
func New(eng *mutation.Engine) *Stack {
	return &Stack{eng: eng}
}

// SetChangeErrorHandler installs fn to observe errors swallowed by
// Change. A nil fn restores the default (silent) behaviour.
func (s *Stack) SetChangeErrorHandler(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChangeError = fn
}

// SetMaxGroups caps the number of undo groups retained to max. 0
// leaves the stack unbounded. Excess groups are trimmed immediately
// from the oldest end.
func (s *Stack) SetMaxGroups(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxGroups = max
	s.trimLocked()
}

func (s *Stack) trimLocked() {
	if s.maxGroups <= 0 {
		return
	}
	if excess := len(s.undo) - s.maxGroups; excess > 0 {
		s.undo = s.undo[excess:]
	}
}

// Push records c, joining the currently open group if one exists via
// StartChange, or opening a singleton group otherwise. It always
// clears the redo stack: any new change invalidates previously undone
// history.
func (s *Stack) Push(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redo = nil
	if s.grouping {
		s.current = append(s.current, c)
		return
	}
	s.undo = append(s.undo, Group{c})
	s.trimLocked()
}

// StartChange opens a group; every Push until the matching EndChange
// joins it as one undo/redo unit. Nested calls are ignored: only the
// outermost StartChange/EndChange pair bounds the group.
func (s *Stack) StartChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grouping {
		return
	}
	s.grouping = true
	s.current = nil
}

// EndChange closes the open group and pushes it as a single undo
// unit, unless StartChange was never called or no changes were
// pushed in between.
func (s *Stack) EndChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.grouping {
		return
	}
	s.grouping = false
	if len(s.current) == 0 {
		s.current = nil
		return
	}
	s.undo = append(s.undo, s.current)
	s.redo = nil
	s.current = nil
	s.trimLocked()
}

// Change brackets fn between StartChange/EndChange and swallows any
// error fn returns: the group still closes (possibly empty) and state
// remains consistent. Install SetChangeErrorHandler to observe the
// error instead of ignoring it.
func (s *Stack) Change(fn func() error) {
	s.StartChange()
	err := fn()
	s.EndChange()
	if err != nil {
		s.mu.Lock()
		handler := s.onChangeError
		s.mu.Unlock()
		if handler != nil {
			handler(err)
		}
	}
}

// Undo pops the most recent group, applies each change's inverse in
// reverse order, moves the group to the redo stack, and returns the
// concatenated diffs with directionality flipped.
func (s *Stack) Undo() []diff.Diff {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return nil
	}
	g := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.mu.Unlock()

	for i := len(g) - 1; i >= 0; i-- {
		g[i].Undo(s.eng)
	}

	s.mu.Lock()
	s.redo = append(s.redo, g)
	s.mu.Unlock()

	return g.inverseDiffs()
}

// Redo pops the most recently undone group, re-applies its changes in
// original order, moves the group back to the undo stack, and returns
// the concatenated diffs in original directionality.
func (s *Stack) Redo() []diff.Diff {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return nil
	}
	g := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.mu.Unlock()

	for _, c := range g {
		c.Redo(s.eng)
	}

	s.mu.Lock()
	s.undo = append(s.undo, g)
	s.mu.Unlock()

	return g.forwardDiffs()
}

// CanUndo reports whether Undo has a group to pop.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has a group to pop.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}
