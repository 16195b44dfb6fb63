package inventory

import (
	"errors"
)

var (
	// ErrNothingToUndo is returned when the history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrUndoTargetMissing is returned when the item named by the newest undo
	// entry no longer exists in its sheet. The entry is discarded.
	ErrUndoTargetMissing = errors.New("undo target no longer exists")
)

// UndoEntry is the inverse of one mutation: put ItemName in SheetName back
// to PrevQuantity.
type UndoEntry struct {
	SheetName    string  `json:"sheet_name"`
	ItemName     string  `json:"item_name"`
	PrevQuantity float64 `json:"prev_quantity"`
}

// UndoStack is a bounded history of inverse operations. With depth 1 it is
// the single-slot Idle/Armed machine: every push replaces the slot.
type UndoStack struct {
	depth   int
	entries []UndoEntry
}

func NewUndoStack(depth int) *UndoStack {
	if depth < 1 {
		depth = 1
	}
	return &UndoStack{depth: depth}
}

func (s *UndoStack) Push(e UndoEntry) {
	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.depth; over > 0 {
		s.entries = append([]UndoEntry(nil), s.entries[over:]...)
	}
}

func (s *UndoStack) Peek() (UndoEntry, bool) {
	if len(s.entries) == 0 {
		return UndoEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *UndoStack) Pop() (UndoEntry, bool) {
	e, ok := s.Peek()
	if ok {
		s.entries = s.entries[:len(s.entries)-1]
	}
	return e, ok
}

// Armed reports whether an undo is available.
func (s *UndoStack) Armed() bool {
	return len(s.entries) > 0
}
