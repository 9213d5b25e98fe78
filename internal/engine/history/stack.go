package history

import (
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/engine/buffer"
)

var (
	ErrNothingToUndo = errors.Base("nothing to undo")
	ErrNothingToRedo = errors.Base("nothing to redo")
)

const (
	// DefaultMaxEntries bounds the undo stack when New is given zero.
	DefaultMaxEntries = 1000

	// DefaultMergeWindow is the longest pause that still continues a
	// typing run.
	DefaultMergeWindow = time.Second
)

// History manages the undo and redo stacks of one buffer.
type History struct {
	mu sync.Mutex

	undo []*Operation
	redo []*Operation

	maxEntries  int
	mergeWindow time.Duration
}

// New creates a history keeping at most maxEntries operations.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries:  maxEntries,
		mergeWindow: DefaultMergeWindow,
	}
}

// SetMergeWindow changes the pause that ends a typing run. Zero disables
// merging.
func (h *History) SetMergeWindow(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mergeWindow = d
}

// Record pushes op and clears the redo stack.
func (h *History) Record(op *Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redo = nil
	if n := len(h.undo); n > 0 && h.mergeWindow > 0 && h.undo[n-1].merge(op, h.mergeWindow) {
		return
	}
	h.undo = append(h.undo, op)
	if excess := len(h.undo) - h.maxEntries; excess > 0 {
		h.undo = h.undo[excess:]
	}
}

// Undo reverts the most recent operation and returns the cursor position
// from before it.
func (h *History) Undo(b *buffer.Buffer) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.undo)
	if n == 0 {
		return 0, ErrNothingToUndo
	}
	op := h.undo[n-1]
	if err := op.Undo(b); err != nil {
		return 0, errors.Errorf("undo: %w", err)
	}
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, op)
	return op.CursorBefore, nil
}

// Redo reapplies the most recently undone operation and returns the
// cursor position from after it.
func (h *History) Redo(b *buffer.Buffer) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.redo)
	if n == 0 {
		return 0, ErrNothingToRedo
	}
	op := h.redo[n-1]
	if err := op.Redo(b); err != nil {
		return 0, errors.Errorf("redo: %w", err)
	}
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, op)
	return op.CursorAfter, nil
}

// CanUndo reports whether there is an operation to undo.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether there is an operation to redo.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Len returns the number of undoable operations.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
