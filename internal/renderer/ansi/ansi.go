// Package ansi writes a decorated document as ANSI-styled text.
package ansi

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/renderer"
	"github.com/dshills/idhue/internal/renderer/core"
	"github.com/dshills/idhue/internal/renderer/highlight"
)

// Options controls what Write styles.
type Options struct {
	// Syntax styles decorated text with the theme's token styles.
	Syntax bool
	// Background paints the theme background behind every run.
	Background bool
}

// Writer renders documents through a termenv output, which downgrades
// colors to the terminal's profile.
type Writer struct {
	out   *termenv.Output
	theme *highlight.Theme
	opts  Options
}

// NewWriter creates a writer for out using theme.
func NewWriter(out *termenv.Output, theme *highlight.Theme, opts Options) *Writer {
	if theme == nil {
		theme = highlight.DefaultTheme()
	}
	return &Writer{out: out, theme: theme, opts: opts}
}

// Write renders [from, limit) of doc. Runs of identically styled runes
// are written as one escape sequence; newlines are never styled.
func (w *Writer) Write(doc renderer.Document, from, limit int) error {
	text := doc.Runes()
	from = max(from, 0)
	limit = min(limit, len(text))

	var sb strings.Builder
	for pos := from; pos < limit; {
		if text[pos] == '\n' {
			sb.WriteByte('\n')
			pos++
			continue
		}
		style := w.styleAt(doc, pos)
		end := pos + 1
		for end < limit && text[end] != '\n' && w.styleAt(doc, end).Equals(style) {
			end++
		}
		sb.WriteString(w.styled(string(text[pos:end]), style))
		pos = end
	}

	if _, err := io.WriteString(w.out, sb.String()); err != nil {
		return errors.Errorf("writing ansi output: %w", err)
	}
	return nil
}

func (w *Writer) styleAt(doc renderer.Document, pos int) core.Style {
	style := core.DefaultStyle()
	if w.opts.Background {
		style = w.theme.Base()
	}
	if tag := doc.TagAt(pos); tag != "" && w.opts.Syntax {
		style = style.Merge(w.theme.StyleForTag(tag))
	}
	if fg, ok := doc.Foreground(pos); ok {
		style = style.WithForeground(fg)
	}
	return style
}

func (w *Writer) styled(s string, style core.Style) string {
	ts := w.out.String(s)
	if !style.Foreground.IsDefault() {
		ts = ts.Foreground(w.out.Color(style.Foreground.Hex()))
	}
	if !style.Background.IsDefault() {
		ts = ts.Background(w.out.Color(style.Background.Hex()))
	}
	if style.Attributes.Has(core.AttrBold) {
		ts = ts.Bold()
	}
	if style.Attributes.Has(core.AttrDim) {
		ts = ts.Faint()
	}
	if style.Attributes.Has(core.AttrItalic) {
		ts = ts.Italic()
	}
	if style.Attributes.Has(core.AttrUnderline) {
		ts = ts.Underline()
	}
	if style.Attributes.Has(core.AttrReverse) {
		ts = ts.Reverse()
	}
	return ts.String()
}

// Swatch returns a block of width cells in c followed by label.
func Swatch(out *termenv.Output, c core.Color, width int, label string) string {
	block := out.String(strings.Repeat(" ", max(width, 0))).Background(out.Color(c.Hex()))
	return block.String() + " " + label
}
