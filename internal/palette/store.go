package palette

import (
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/idhue/internal/renderer/core"
)

// Store holds the active palette. Readers always observe either the old
// or the new palette in full; Swap replaces it in one step.
type Store struct {
	current atomic.Pointer[Palette]
}

// NewStore creates a store holding p (which may be nil).
func NewStore(p *Palette) *Store {
	s := &Store{}
	if p != nil {
		s.current.Store(p)
	}
	return s
}

// Load returns the active palette, or nil if none has been generated.
func (s *Store) Load() *Palette {
	return s.current.Load()
}

// Swap installs p and returns the previous palette.
func (s *Store) Swap(p *Palette) *Palette {
	return s.current.Swap(p)
}

// Regenerate builds a palette from opts and installs it.
func (s *Store) Regenerate(opts Options) (*Palette, error) {
	p, err := GenerateWith(opts)
	if err != nil {
		return nil, err
	}
	s.Swap(p)
	return p, nil
}

// LuminanceOf returns the HSL lightness of a foreground color. The default
// terminal color has no known lightness and yields (DefaultLuminance, false).
func LuminanceOf(fg core.Color) (float64, bool) {
	if fg.IsDefault() {
		return DefaultLuminance, false
	}
	c := colorful.Color{
		R: float64(fg.R) / 255,
		G: float64(fg.G) / 255,
		B: float64(fg.B) / 255,
	}
	_, _, l := c.Hsl()
	return l, true
}
