package history

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/idhue/internal/engine/buffer"
)

// Operation is a single undoable edit: OldText at Start was replaced by
// NewText. Offsets are in runes.
type Operation struct {
	Start   int
	OldText string
	NewText string

	CursorBefore int
	CursorAfter  int

	Timestamp time.Time
}

// NewInsert returns an operation inserting text at start.
func NewInsert(start int, text string, cursorBefore, cursorAfter int) *Operation {
	return &Operation{
		Start:        start,
		NewText:      text,
		CursorBefore: cursorBefore,
		CursorAfter:  cursorAfter,
		Timestamp:    time.Now(),
	}
}

// NewDelete returns an operation removing deleted from start.
func NewDelete(start int, deleted string, cursorBefore, cursorAfter int) *Operation {
	return &Operation{
		Start:        start,
		OldText:      deleted,
		CursorBefore: cursorBefore,
		CursorAfter:  cursorAfter,
		Timestamp:    time.Now(),
	}
}

// IsInsert reports whether the operation only inserts.
func (op *Operation) IsInsert() bool {
	return op.OldText == "" && op.NewText != ""
}

// IsDelete reports whether the operation only deletes.
func (op *Operation) IsDelete() bool {
	return op.OldText != "" && op.NewText == ""
}

func (op *Operation) oldEnd() int {
	return op.Start + utf8.RuneCountInString(op.OldText)
}

func (op *Operation) newEnd() int {
	return op.Start + utf8.RuneCountInString(op.NewText)
}

// Undo restores the text the operation replaced.
func (op *Operation) Undo(b *buffer.Buffer) error {
	_, err := b.Replace(op.Start, op.newEnd(), op.OldText)
	return err
}

// Redo applies the operation again.
func (op *Operation) Redo(b *buffer.Buffer) error {
	_, err := b.Replace(op.Start, op.oldEnd(), op.NewText)
	return err
}

// merge folds next into op when next continues a typing run or a run of
// backspaces. It reports whether next was absorbed.
func (op *Operation) merge(next *Operation, window time.Duration) bool {
	if next.Timestamp.Sub(op.Timestamp) > window {
		return false
	}
	switch {
	case op.IsInsert() && next.IsInsert():
		if next.Start != op.newEnd() || strings.Contains(next.NewText, "\n") {
			return false
		}
		op.NewText += next.NewText
	case op.IsDelete() && next.IsDelete():
		if next.oldEnd() != op.Start || strings.Contains(next.OldText, "\n") {
			return false
		}
		op.Start = next.Start
		op.OldText = next.OldText + op.OldText
	default:
		return false
	}
	op.CursorAfter = next.CursorAfter
	op.Timestamp = next.Timestamp
	return true
}
