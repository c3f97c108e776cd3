package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/selection"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when a non-positive limit is given.
const DefaultMaxEntries = 1000

// Entry is one undo unit: the resolved operations of a committed
// transaction with the selections around it.
type Entry struct {
	Operations      []operation.Operation
	SelectionBefore *selection.Selection
	SelectionAfter  *selection.Selection
	Description     string
	Timestamp       time.Time
}

// Inverse returns the operations that undo the entry.
func (e *Entry) Inverse() []operation.Operation {
	return operation.Invert(e.Operations)
}

// Info describes an entry for listings.
type Info struct {
	Description string
	Operations  int
	Timestamp   time.Time
}

func (e *Entry) info() Info {
	return Info{Description: e.Description, Operations: len(e.Operations), Timestamp: e.Timestamp}
}

// Replay applies an entry's operations in the given direction. It returns
// the entry to push onto the opposite stack, normally the same entry.
type Replay func(e *Entry) (*Entry, error)

// History manages undo/redo stacks of committed transactions.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	grouping bool
	group    *Entry

	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Push adds an entry to the undo stack and clears the redo stack.
// While grouping, the entry is merged into the open group.
func (h *History) Push(e *Entry) {
	if e == nil || len(e.Operations) == 0 {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.group == nil {
			h.group = &Entry{Description: e.Description}
		}
		if len(h.group.Operations) == 0 {
			h.group.SelectionBefore = e.SelectionBefore
			h.group.Timestamp = e.Timestamp
		}
		h.group.Operations = append(h.group.Operations, e.Operations...)
		h.group.SelectionAfter = e.SelectionAfter
		return
	}

	h.pushLocked(e)
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *Entry) {
	h.undoStack = append(h.undoStack, e)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the last entry and hands it to replay.
// The lock is released while replay runs so it may call back into the
// engine; on failure the entry is restored.
func (h *History) Undo(replay Replay) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	next, err := replay(entry)
	if err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}
	if next == nil {
		next = entry
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, next)
	h.mu.Unlock()
	return nil
}

// Redo pops the last undone entry and hands it to replay.
func (h *History) Redo(replay Replay) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	next, err := replay(entry)
	if err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}
	if next == nil {
		next = entry
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, next)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group. Entries pushed until EndGroup undo as one.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}
	h.grouping = true
	h.group = nil
	if name != "" {
		h.group = &Entry{Description: name}
	}
}

// EndGroup closes the group and pushes it as a single entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	g := h.group
	h.group = nil
	if g == nil || len(g.Operations) == 0 {
		return
	}
	h.pushLocked(g)
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}

// UndoInfo lists undo entries, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = e.info()
	}
	return result
}

// RedoInfo lists redo entries, oldest first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.redoStack))
	for i, e := range h.redoStack {
		result[i] = e.info()
	}
	return result
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
