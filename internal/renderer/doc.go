// Package renderer draws a decorated document onto a terminal backend.
//
// Each rune is styled in layers:
//
//	┌─────────────────────────────────────────┐
//	│  identifier foreground (colorid)        │
//	├─────────────────────────────────────────┤
//	│  decoration tag style (highlight.Theme) │
//	├─────────────────────────────────────────┤
//	│  theme base style                       │
//	└─────────────────────────────────────────┘
//
// The renderer owns the scroll position and the line-number gutter. The
// status line is drawn by the statusline subpackage on the last row.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, highlight.DefaultTheme(), renderer.DefaultOptions())
//	from, limit := r.VisibleRange(doc)
//	session.Colorize(from, limit)
//	r.Render(doc, cursor)
package renderer
