// Package palette generates sets of perceptually distinct colors that share
// a single lightness.
//
// Candidates are sampled on a hue × saturation grid at a fixed HSL
// lightness, converted to CIE Lab, and picked greedily so that every new
// color maximizes its CIEDE2000 distance to the nearest color already
// chosen. The greedy walk is deterministic: ties go to the candidate with
// the lowest grid index (hue first, then saturation), so a palette of size
// K-1 is always a prefix of the palette of size K.
package palette

import (
	"github.com/lucasb-eyer/go-colorful"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/renderer/core"
)

// Defaults for palette generation.
const (
	DefaultSize           = 10
	DefaultGridResolution = 8
	DefaultMinLuminance   = 0.35
	DefaultMaxLuminance   = 0.8
	DefaultLuminance      = 0.5

	// minSaturation is the lowest saturation sampled; the grid spreads
	// the remaining range up to 1.0.
	minSaturation = 0.5
)

// ErrInvalidCount is returned when a palette of fewer than one color is requested.
var ErrInvalidCount = errors.Base("palette size must be at least 1")

// ErrInvalidOptions is returned for an unusable grid or luminance range.
var ErrInvalidOptions = errors.Base("invalid palette options")

// Color is a palette entry: a point in Lab space together with its
// renderable RGB form.
type Color struct {
	L, A, B float64
	rgb     colorful.Color
}

// ColorFromLab builds a palette color from Lab coordinates. Points outside
// the sRGB gamut are clamped for rendering.
func ColorFromLab(l, a, b float64) Color {
	return Color{L: l, A: a, B: b, rgb: colorful.Lab(l, a, b).Clamped()}
}

// Colorful returns the color as a go-colorful value.
func (c Color) Colorful() colorful.Color {
	return c.rgb
}

// Core returns the renderable form of the color.
func (c Color) Core() core.Color {
	r, g, b := c.rgb.RGB255()
	return core.ColorFromRGB(r, g, b)
}

// Hex returns the "#rrggbb" representation.
func (c Color) Hex() string {
	return c.rgb.Hex()
}

// Lightness returns the HSL lightness of the rendered color.
func (c Color) Lightness() float64 {
	_, _, l := c.rgb.Hsl()
	return l
}

// Distance returns the CIEDE2000 distance between two colors.
func (c Color) Distance(other Color) float64 {
	return labColor(c).DistanceCIEDE2000(labColor(other))
}

func labColor(c Color) colorful.Color {
	return colorful.Lab(c.L, c.A, c.B)
}

// Palette is an immutable ordered set of colors.
type Palette struct {
	colors    []Color
	lightness float64
}

// Len returns the number of colors.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.colors)
}

// At returns the color at slot i. Slots wrap around the palette size.
// The second result is false for an empty palette.
func (p *Palette) At(i int) (Color, bool) {
	n := p.Len()
	if n == 0 {
		return Color{}, false
	}
	i %= n
	if i < 0 {
		i += n
	}
	return p.colors[i], true
}

// Colors returns a copy of the palette colors.
func (p *Palette) Colors() []Color {
	if p == nil {
		return nil
	}
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Lightness returns the HSL lightness shared by every color.
func (p *Palette) Lightness() float64 {
	if p == nil {
		return 0
	}
	return p.lightness
}

// Options controls palette generation.
type Options struct {
	// Size is the number of colors requested.
	Size int
	// Luminance is the target HSL lightness, usually taken from the
	// foreground color. It is clamped into [MinLuminance, MaxLuminance].
	Luminance float64
	// GridResolution is the number of hue and saturation steps sampled.
	GridResolution int
	// MinLuminance and MaxLuminance bound the lightness.
	MinLuminance float64
	MaxLuminance float64
}

// DefaultOptions returns the options used by Generate.
func DefaultOptions() Options {
	return Options{
		Size:           DefaultSize,
		Luminance:      DefaultLuminance,
		GridResolution: DefaultGridResolution,
		MinLuminance:   DefaultMinLuminance,
		MaxLuminance:   DefaultMaxLuminance,
	}
}

// Generate returns min(count, 64) maximally separated colors at the given
// lightness, using the default grid and clamp bounds.
func Generate(count int, luminance float64) (*Palette, error) {
	opts := DefaultOptions()
	opts.Size = count
	opts.Luminance = luminance
	return GenerateWith(opts)
}

// GenerateWith generates a palette with explicit options.
func GenerateWith(opts Options) (*Palette, error) {
	if opts.Size < 1 {
		return nil, errors.Errorf("%w: got %d", ErrInvalidCount, opts.Size)
	}
	if opts.GridResolution < 1 {
		return nil, errors.Errorf("%w: grid resolution %d", ErrInvalidOptions, opts.GridResolution)
	}
	if opts.MinLuminance > opts.MaxLuminance {
		return nil, errors.Errorf("%w: luminance range [%g, %g]", ErrInvalidOptions, opts.MinLuminance, opts.MaxLuminance)
	}

	lightness := ClampLuminance(opts.Luminance, opts.MinLuminance, opts.MaxLuminance)
	candidates := candidateGrid(opts.GridResolution, lightness)
	chosen := selectDistinct(candidates, opts.Size)

	colors := make([]Color, len(chosen))
	for i, idx := range chosen {
		c := candidates[idx]
		colors[i] = ColorFromLab(c.l, c.a, c.b)
	}
	return &Palette{colors: colors, lightness: lightness}, nil
}

// ClampLuminance restricts l to [lo, hi].
func ClampLuminance(l, lo, hi float64) float64 {
	return max(lo, min(hi, l))
}

type candidate struct {
	l, a, b float64
}

// candidateGrid samples n hues × n saturations at the given lightness.
// Index order is hue-major.
func candidateGrid(n int, lightness float64) []candidate {
	out := make([]candidate, 0, n*n)
	for h := 0; h < n; h++ {
		hue := 360 * float64(h) / float64(n)
		for s := 0; s < n; s++ {
			sat := minSaturation
			if n > 1 {
				sat += float64(s) / float64(n-1) * (1 - minSaturation)
			}
			l, a, b := colorful.Hsl(hue, sat, lightness).Lab()
			out = append(out, candidate{l: l, a: a, b: b})
		}
	}
	return out
}

// selectDistinct runs the greedy max-min walk and returns the chosen
// candidate indices in selection order.
func selectDistinct(candidates []candidate, count int) []int {
	if len(candidates) == 0 {
		return nil
	}
	count = min(count, len(candidates))

	cols := make([]colorful.Color, len(candidates))
	for i, c := range candidates {
		cols[i] = colorful.Lab(c.l, c.a, c.b)
	}

	// nearest[i] is the distance from candidate i to its closest chosen color.
	nearest := make([]float64, len(candidates))
	taken := make([]bool, len(candidates))
	chosen := make([]int, 0, count)

	pick := func(idx int) {
		taken[idx] = true
		chosen = append(chosen, idx)
		for i := range cols {
			if taken[i] {
				continue
			}
			d := cols[i].DistanceCIEDE2000(cols[idx])
			if len(chosen) == 1 || d < nearest[i] {
				nearest[i] = d
			}
		}
	}

	pick(0)
	for len(chosen) < count {
		best := -1
		for i := range cols {
			if taken[i] {
				continue
			}
			if best < 0 || nearest[i] > nearest[best] {
				best = i
			}
		}
		if best < 0 {
			break
		}
		pick(best)
	}
	return chosen
}
