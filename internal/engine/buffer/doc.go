// Package buffer provides the in-memory document model that the identifier
// colorizer scans and styles.
//
// Offsets are rune indices. Alongside the text the buffer keeps three
// property layers per rune:
//
//   - a decoration tag ("keyword", "comment", ...) written by the syntax
//     highlighter; "" means undecorated
//   - the classified marker, written by the colorizer on every identifier
//     it has styled so later scans accept the span regardless of its tag
//   - a foreground color
//
// Basic usage:
//
//	buf := buffer.NewFromString("foo.bar baz", buffer.WithLanguage("javascript"))
//	buf.SetTag(0, 3, "variable")
//	buf.MarkClassified(0, 3)
//	next := buf.NextChange(0, buf.Len()) // 3
//
// Edits:
//
// Insert, Delete and Replace keep the property layers aligned with the
// text. Inserted runes start undecorated. Every line touched by an edit
// loses its classified markers, which is the invalidation contract the
// colorizer relies on. Listeners registered with OnEdit run after each edit.
package buffer
