package buffer

import "github.com/dshills/idhue/internal/renderer/core"

// props holds the per-rune property layers.
type props struct {
	tag        string
	classified bool
	fg         core.Color
	hasFg      bool
}

// Decorations

// TagAt returns the decoration tag at pos, or "" for undecorated text.
func (b *Buffer) TagAt(pos int) string {
	if pos < 0 || pos >= len(b.props) {
		return ""
	}
	return b.props[pos].tag
}

// SetTag decorates [start, end) with tag. An empty tag removes the
// decoration. A position whose tag changes loses its classified marker.
func (b *Buffer) SetTag(start, end int, tag string) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		if b.props[i].tag != tag {
			b.props[i].tag = tag
			b.props[i].classified = false
		}
	}
}

// ClearTags removes every decoration in [start, end).
func (b *Buffer) ClearTags(start, end int) {
	b.SetTag(start, end, "")
}

// Classified markers

// Classified reports whether pos carries the classified marker.
func (b *Buffer) Classified(pos int) bool {
	if pos < 0 || pos >= len(b.props) {
		return false
	}
	return b.props[pos].classified
}

// MarkClassified sets the classified marker on [start, end).
func (b *Buffer) MarkClassified(start, end int) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.props[i].classified = true
	}
}

// ClearClassified removes the classified marker from [start, end).
func (b *Buffer) ClearClassified(start, end int) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.props[i].classified = false
	}
}

// NextChange returns the first offset after pos where the decoration tag
// or the classified marker differs from the one at pos, or limit if there
// is no such offset before it.
func (b *Buffer) NextChange(pos, limit int) int {
	limit = min(limit, len(b.props))
	if pos < 0 || pos >= limit {
		return limit
	}
	cur := b.props[pos]
	for i := pos + 1; i < limit; i++ {
		p := b.props[i]
		if p.tag != cur.tag || p.classified != cur.classified {
			return i
		}
	}
	return limit
}

// Foreground colors

// SetForeground applies a foreground color to [start, end).
func (b *Buffer) SetForeground(start, end int, c core.Color) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.props[i].fg = c
		b.props[i].hasFg = true
	}
}

// ClearForeground removes foreground colors from [start, end).
func (b *Buffer) ClearForeground(start, end int) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.props[i].fg = core.Color{}
		b.props[i].hasFg = false
	}
}

// Foreground returns the foreground color applied at pos.
func (b *Buffer) Foreground(pos int) (core.Color, bool) {
	if pos < 0 || pos >= len(b.props) {
		return core.Color{}, false
	}
	p := b.props[pos]
	return p.fg, p.hasFg
}

// ForegroundSpans returns maximal runs of identical foreground color in
// [start, end). Runs without a foreground color are omitted.
func (b *Buffer) ForegroundSpans(start, end int) []core.StyleSpan {
	start, end = b.clamp(start, end)
	var spans []core.StyleSpan
	for i := start; i < end; {
		p := b.props[i]
		j := i + 1
		for j < end && b.props[j].hasFg == p.hasFg && b.props[j].fg.Equals(p.fg) {
			j++
		}
		if p.hasFg {
			spans = append(spans, core.StyleSpan{Start: i, End: j, Style: core.NewStyle(p.fg)})
		}
		i = j
	}
	return spans
}
