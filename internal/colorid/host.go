package colorid

import (
	"github.com/dshills/idhue/internal/engine/buffer"
)

// BufferHost adapts a buffer.Buffer to Host.
type BufferHost struct {
	*buffer.Buffer

	// Redraw is called by RequestRedraw; nil is a no-op.
	Redraw func()
	// Pending backs InputPending; nil means no input is ever pending.
	Pending func() bool
}

// NewBufferHost wraps b.
func NewBufferHost(b *buffer.Buffer) *BufferHost {
	return &BufferHost{Buffer: b}
}

// RequestRedraw implements Host.
func (h *BufferHost) RequestRedraw() {
	if h.Redraw != nil {
		h.Redraw()
	}
}

// InputPending implements Host.
func (h *BufferHost) InputPending() bool {
	return h.Pending != nil && h.Pending()
}

var _ Host = (*BufferHost)(nil)
