package renderer

import (
	"strconv"

	"github.com/dshills/idhue/internal/renderer/backend"
	"github.com/dshills/idhue/internal/renderer/core"
	"github.com/dshills/idhue/internal/renderer/highlight"
)

// Document provides read access to decorated text.
type Document interface {
	// Runes returns the document text.
	Runes() []rune

	// LineCount returns the number of lines.
	LineCount() int

	// LineRange returns the rune offsets of a line, excluding the newline.
	LineRange(line int) (start, end int, err error)

	// LineOf returns the line containing pos.
	LineOf(pos int) int

	// TagAt returns the decoration tag at pos.
	TagAt(pos int) string

	// Foreground returns the identifier color applied at pos.
	Foreground(pos int) (core.Color, bool)
}

// Options configures the renderer.
type Options struct {
	// Display
	ShowLineNumbers bool // Show line numbers in the gutter
	TabWidth        int  // Columns per tab stop

	// Scrolling
	ScrollMargin int // Lines kept visible above and below the cursor

	// StatusLines is the number of rows reserved at the bottom.
	StatusLines int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		ShowLineNumbers: true,
		TabWidth:        4,
		ScrollMargin:    3,
		StatusLines:     1,
	}
}

// Renderer draws a Document onto a backend.
// It is not safe for concurrent use.
type Renderer struct {
	opts    Options
	backend backend.Backend
	theme   *highlight.Theme

	width  int
	height int

	topLine    int
	leftColumn int

	frames uint64
}

// New creates a renderer sized to the backend.
func New(b backend.Backend, theme *highlight.Theme, opts Options) *Renderer {
	if opts.TabWidth < 1 {
		opts.TabWidth = 4
	}
	if theme == nil {
		theme = highlight.DefaultTheme()
	}
	w, h := b.Size()
	return &Renderer{
		opts:    opts,
		backend: b,
		theme:   theme,
		width:   w,
		height:  h,
	}
}

// Theme returns the active theme.
func (r *Renderer) Theme() *highlight.Theme {
	return r.theme
}

// SetTheme replaces the theme used by subsequent frames.
func (r *Renderer) SetTheme(t *highlight.Theme) {
	if t != nil {
		r.theme = t
	}
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
}

// Size returns the screen dimensions.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// TextHeight returns the number of rows available for document text.
func (r *Renderer) TextHeight() int {
	return max(r.height-r.opts.StatusLines, 0)
}

// TopLine returns the first visible line.
func (r *Renderer) TopLine() int {
	return r.topLine
}

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// ScrollTo makes line the first visible line, clamped to the document.
func (r *Renderer) ScrollTo(line, lineCount int) {
	last := max(lineCount-r.TextHeight(), 0)
	r.topLine = max(0, min(line, last))
}

// ScrollBy scrolls by delta lines.
func (r *Renderer) ScrollBy(delta, lineCount int) {
	r.ScrollTo(r.topLine+delta, lineCount)
}

// VisibleRange returns the rune offsets [from, limit) covered by the
// visible lines, including the trailing newline of the last one.
func (r *Renderer) VisibleRange(doc Document) (from, limit int) {
	n := doc.LineCount()
	first := min(r.topLine, n-1)
	last := min(r.topLine+r.TextHeight(), n) - 1
	if last < first {
		return 0, 0
	}
	from, _, _ = doc.LineRange(first)
	_, limit, _ = doc.LineRange(last)
	return from, min(limit+1, len(doc.Runes()))
}

// ScrollToCursor adjusts the scroll position so pos is visible with the
// configured margins.
func (r *Renderer) ScrollToCursor(doc Document, pos int) {
	h := r.TextHeight()
	if h == 0 {
		return
	}
	line := doc.LineOf(pos)
	margin := min(r.opts.ScrollMargin, (h-1)/2)
	if line < r.topLine+margin {
		r.ScrollTo(line-margin, doc.LineCount())
	} else if line >= r.topLine+h-margin {
		r.ScrollTo(line-h+margin+1, doc.LineCount())
	}

	start, _, err := doc.LineRange(line)
	if err != nil {
		return
	}
	col := r.columnOf(doc.Runes()[start:pos])
	textWidth := max(r.width-r.gutterWidth(doc.LineCount()), 1)
	if col < r.leftColumn {
		r.leftColumn = col
	} else if col >= r.leftColumn+textWidth {
		r.leftColumn = col - textWidth + 1
	}
}

// Render draws the visible part of doc and places the cursor at pos.
// A negative pos hides the cursor.
func (r *Renderer) Render(doc Document, pos int) {
	r.frames++
	text := doc.Runes()
	lineCount := doc.LineCount()
	gutter := r.gutterWidth(lineCount)
	base := r.theme.Base()
	gutterStyle := base.WithForeground(r.theme.StyleForToken(highlight.TokenComment).Foreground)

	cursorX, cursorY := -1, -1

	for row := 0; row < r.TextHeight(); row++ {
		x := 0
		line := r.topLine + row

		if line >= lineCount {
			r.fill(x, row, base)
			continue
		}

		if gutter > 0 {
			num := strconv.Itoa(line + 1)
			for i := 0; i < gutter-len(num)-1; i++ {
				r.backend.SetCell(x, row, core.NewStyledCell(' ', gutterStyle))
				x++
			}
			for _, c := range num {
				r.backend.SetCell(x, row, core.NewStyledCell(c, gutterStyle))
				x++
			}
			r.backend.SetCell(x, row, core.NewStyledCell(' ', gutterStyle))
			x++
		}

		start, end, _ := doc.LineRange(line)
		col := 0
		for i := start; i <= end; i++ {
			if i == pos {
				cursorX, cursorY = x+col-r.leftColumn, row
			}
			if i == end {
				break
			}

			ch := text[i]
			w := core.RuneWidth(ch)
			if ch == '\t' {
				w = r.opts.TabWidth - col%r.opts.TabWidth
			}
			style := r.styleAt(doc, i, base)
			if ch == '\t' {
				for k := 0; k < w; k++ {
					r.put(x, x+col+k-r.leftColumn, row, core.NewStyledCell(' ', style))
				}
			} else if w > 0 {
				r.put(x, x+col-r.leftColumn, row, core.NewStyledCell(ch, style))
			}
			col += w
		}
		r.fill(max(x+col-r.leftColumn, x), row, base)
	}

	if cursorX >= 0 && cursorX < r.width {
		r.backend.ShowCursor(cursorX, cursorY)
	} else {
		r.backend.HideCursor()
	}
}

// Show flushes the frame to the terminal.
func (r *Renderer) Show() {
	r.backend.Show()
}

// styleAt layers the identifier color over the tag style over base.
func (r *Renderer) styleAt(doc Document, pos int, base core.Style) core.Style {
	style := base
	if tag := doc.TagAt(pos); tag != "" {
		style = style.Merge(r.theme.StyleForTag(tag))
	}
	if fg, ok := doc.Foreground(pos); ok {
		style = style.WithForeground(fg)
	}
	return style
}

// put draws cell at sx unless it falls left of the text area at minX or
// off the right edge.
func (r *Renderer) put(minX, sx, row int, cell core.Cell) {
	if sx < minX || sx+max(cell.Width, 1) > r.width {
		return
	}
	r.backend.SetCell(sx, row, cell)
}

func (r *Renderer) fill(x, row int, style core.Style) {
	for ; x < r.width; x++ {
		r.backend.SetCell(x, row, core.NewStyledCell(' ', style))
	}
}

func (r *Renderer) gutterWidth(lineCount int) int {
	if !r.opts.ShowLineNumbers {
		return 0
	}
	return max(len(strconv.Itoa(lineCount)), 3) + 1
}

func (r *Renderer) columnOf(line []rune) int {
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			col += r.opts.TabWidth - col%r.opts.TabWidth
			continue
		}
		col += core.RuneWidth(ch)
	}
	return col
}
