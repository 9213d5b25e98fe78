// Package history records buffer edits so they can be undone and redone.
//
// Each edit is an Operation holding the replaced and inserted text and the
// cursor on either side of it. Consecutive single-line insertions, and
// consecutive backspaces, made within the merge window collapse into one
// operation so that a typed word undoes as a unit:
//
//	h := history.New(500)
//	h.Record(history.NewInsert(pos, "x", pos, pos+1))
//	cursor, err := h.Undo(buf)
//
// Applying an undo or redo edits the buffer through Replace, so edit
// listeners see it like any other change.
package history
