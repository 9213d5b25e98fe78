// Package statusline renders the viewer's bottom status line.
package statusline

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/idhue/internal/renderer/backend"
	"github.com/dshills/idhue/internal/renderer/core"
)

// StatusLine renders file and colorizer state on one row.
type StatusLine struct {
	// Display state
	filename    string // Current filename (empty for scratch)
	language    string // Language tag of the buffer
	modified    bool   // Buffer has unsaved changes
	line        int    // Cursor line (1-indexed for display)
	col         int    // Cursor column (1-indexed for display)
	identifiers int    // Identifiers in the registry
	slots       int    // Palette size
	refresh     string // Outcome of the last refresh
	took        time.Duration
	theme       string

	// Message display
	message     string
	messageType MessageType

	width int
}

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// New creates a new status line.
func New() *StatusLine {
	return &StatusLine{}
}

// SetFile updates the displayed filename and language.
func (s *StatusLine) SetFile(filename, language string) {
	s.filename = filename
	s.language = language
}

// SetModified updates the modified indicator.
func (s *StatusLine) SetModified(modified bool) {
	s.modified = modified
}

// SetPosition updates the cursor position (1-indexed).
func (s *StatusLine) SetPosition(line, col int) {
	s.line = line
	s.col = col
}

// SetColorizer updates the colorizer summary.
func (s *StatusLine) SetColorizer(identifiers, slots int, refresh string, took time.Duration) {
	s.identifiers = identifiers
	s.slots = slots
	s.refresh = refresh
	s.took = took
}

// SetTheme updates the displayed theme name.
func (s *StatusLine) SetTheme(name string) {
	s.theme = name
}

// SetMessage displays a status message in place of the file info.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message.
func (s *StatusLine) Message() (string, MessageType) {
	return s.message, s.messageType
}

// Resize updates the status line width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Left returns the text drawn on the left side.
func (s *StatusLine) Left() string {
	if s.message != "" {
		return " " + s.message
	}
	name := s.filename
	if name == "" {
		name = "[No Name]"
	}
	if s.modified {
		name += " [+]"
	}
	if s.language != "" {
		name += " (" + s.language + ")"
	}
	return " " + name
}

// Right returns the text drawn on the right side.
func (s *StatusLine) Right() string {
	line, col := max(s.line, 1), max(s.col, 1)
	info := fmt.Sprintf("%d ids / %d hues", s.identifiers, s.slots)
	if s.refresh != "" {
		info += " | " + s.refresh
		if s.took > 0 {
			info += " " + s.took.Round(time.Microsecond).String()
		}
	}
	if s.theme != "" {
		info += " | " + s.theme
	}
	return fmt.Sprintf("%s | Ln %d, Col %d ", info, line, col)
}

// Render draws the status line on row using base as the bar style.
func (s *StatusLine) Render(b backend.Backend, row int, base core.Style) {
	bar := core.Style{
		Foreground: base.Background,
		Background: base.Foreground,
	}
	switch s.messageType {
	case MessageError:
		bar = bar.WithForeground(core.ColorFromRGB(200, 30, 30)).Bold()
	case MessageWarning:
		bar = bar.WithForeground(core.ColorFromRGB(160, 120, 0))
	}

	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, core.NewStyledCell(' ', bar))
	}

	right := s.Right()
	rw := runewidth.StringWidth(right)
	if rw > s.width {
		right = runewidth.Truncate(right, s.width, "")
		rw = runewidth.StringWidth(right)
	}
	left := runewidth.Truncate(s.Left(), max(s.width-rw-1, 0), "…")

	draw(b, 0, row, left, bar)
	draw(b, s.width-rw, row, right, bar)
}

func draw(b backend.Backend, x, row int, text string, style core.Style) {
	for _, r := range text {
		cell := core.NewStyledCell(r, style)
		b.SetCell(x, row, cell)
		x += max(cell.Width, 1)
	}
}
