package buffer

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.Base("offset out of range")
	ErrRangeInvalid     = errors.Base("invalid range")
	ErrLineOutOfRange   = errors.Base("line out of range")
)

// Edit describes a completed change: the runes in [Start, OldEnd) were
// replaced by the runes now in [Start, NewEnd).
type Edit struct {
	Start    int
	OldEnd   int
	NewEnd   int
	Revision uint64
}

// Delta returns the change in document length caused by the edit.
func (e Edit) Delta() int {
	return e.NewEnd - e.OldEnd
}

// EditListener is notified after every successful edit.
type EditListener func(Edit)

// Buffer is an editable document addressed by rune offsets. Besides the
// text it carries three per-rune layers: a decoration tag set by the
// syntax highlighter, a "classified" marker set by the identifier
// colorizer, and a foreground color.
//
// A Buffer is owned by a single goroutine and is not safe for concurrent use.
type Buffer struct {
	id       uuid.UUID
	language string
	text     []rune
	props    []props
	lines    []int // offsets of line starts; nil when stale
	revision uint64

	listeners []EditListener
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{id: uuid.New()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a buffer with initial content. Line endings are
// normalized to "\n".
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.text = []rune(normalizeLineEndings(s))
	b.props = make([]props, len(b.text))
	return b
}

// NewFromReader creates a buffer from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading buffer content: %w", err)
	}
	return NewFromString(string(data), opts...), nil
}

// normalizeLineEndings converts CRLF and CR to LF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ID returns the buffer's identity.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Language returns the language tag of the buffer.
func (b *Buffer) Language() string {
	return b.language
}

// SetLanguage changes the language tag.
func (b *Buffer) SetLanguage(lang string) {
	b.language = lang
}

// Revision returns a counter incremented by every edit.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// Read Operations

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Runes returns the buffer content. The slice is shared with the buffer
// and must not be modified; it is invalidated by the next edit.
func (b *Buffer) Runes() []rune {
	return b.text
}

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	start, end = b.clamp(start, end)
	return string(b.text[start:end])
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	return len(b.lineStarts())
}

// LineRange returns the offsets of a line's first rune and of its end,
// excluding the newline.
func (b *Buffer) LineRange(line int) (start, end int, err error) {
	starts := b.lineStarts()
	if line < 0 || line >= len(starts) {
		return 0, 0, errors.Errorf("%w: %d", ErrLineOutOfRange, line)
	}
	start = starts[line]
	if line+1 < len(starts) {
		end = starts[line+1] - 1
	} else {
		end = len(b.text)
	}
	return start, end, nil
}

// LineOf returns the line containing offset pos.
func (b *Buffer) LineOf(pos int) int {
	starts := b.lineStarts()
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (b *Buffer) lineStarts() []int {
	if b.lines != nil {
		return b.lines
	}
	starts := []int{0}
	for i, r := range b.text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	b.lines = starts
	return starts
}

// Write Operations

// Insert inserts text at offset and returns the end of the inserted text.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	if offset < 0 || offset > len(b.text) {
		return 0, errors.Errorf("%w: %d", ErrOffsetOutOfRange, offset)
	}
	return b.replace(offset, offset, text), nil
}

// Delete removes the text in [start, end).
func (b *Buffer) Delete(start, end int) error {
	if start < 0 || start > end || end > len(b.text) {
		return errors.Errorf("%w: [%d, %d)", ErrRangeInvalid, start, end)
	}
	b.replace(start, end, "")
	return nil
}

// Replace replaces [start, end) with text and returns the end of the new text.
func (b *Buffer) Replace(start, end int, text string) (int, error) {
	if start < 0 || start > end || end > len(b.text) {
		return 0, errors.Errorf("%w: [%d, %d)", ErrRangeInvalid, start, end)
	}
	return b.replace(start, end, text), nil
}

// OnEdit registers a listener called after each edit.
func (b *Buffer) OnEdit(fn EditListener) {
	b.listeners = append(b.listeners, fn)
}

func (b *Buffer) replace(start, end int, text string) int {
	ins := []rune(normalizeLineEndings(text))
	newEnd := start + len(ins)

	tail := append([]rune(nil), b.text[end:]...)
	b.text = append(append(b.text[:start], ins...), tail...)

	tailProps := append([]props(nil), b.props[end:]...)
	b.props = append(append(b.props[:start], make([]props, len(ins))...), tailProps...)

	b.lines = nil
	b.revision++
	b.invalidateAround(start, newEnd)

	edit := Edit{Start: start, OldEnd: end, NewEnd: newEnd, Revision: b.revision}
	for _, fn := range b.listeners {
		fn(edit)
	}
	return newEnd
}

// invalidateAround drops the classified marker on every line touched by an
// edit so the next scan re-evaluates those positions.
func (b *Buffer) invalidateAround(start, end int) {
	lo := start
	for lo > 0 && b.text[lo-1] != '\n' {
		lo--
	}
	hi := end
	for hi < len(b.text) && b.text[hi] != '\n' {
		hi++
	}
	for i := lo; i < hi; i++ {
		b.props[i].classified = false
	}
}

func (b *Buffer) clamp(start, end int) (int, int) {
	start = max(0, min(start, len(b.text)))
	end = max(start, min(end, len(b.text)))
	return start, end
}
