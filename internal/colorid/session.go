// Package colorid colors identifiers by spelling.
//
// A Session binds one document (the Host) to a language rule, a shared
// palette and an identifier registry. The host calls Colorize from its
// redraw path for the visible region, and Refresh from its scheduler to
// rebuild the registry from a whole-document scan.
//
// A Session is owned by the host's UI goroutine and is not safe for
// concurrent use. The palette store it reads may be shared across
// sessions and goroutines.
package colorid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/idhue/internal/ident"
	"github.com/dshills/idhue/internal/lexrule"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/renderer/core"
	"github.com/dshills/idhue/internal/scan"
	"github.com/dshills/idhue/internal/schedule"
)

// Host is the capability a text model exposes to a Session.
type Host interface {
	scan.Source

	// SetForeground styles [start, end) with c.
	SetForeground(start, end int, c core.Color)

	// MarkClassified sets the classified marker on [start, end). The host
	// must clear markers on text it edits.
	MarkClassified(start, end int)

	// RequestRedraw asks the host to redraw the whole document.
	RequestRedraw()

	// InputPending reports whether user input is waiting to be handled.
	InputPending() bool
}

// RefreshResult describes the outcome of Refresh.
type RefreshResult int

const (
	// RefreshCompleted means the registry was rebuilt.
	RefreshCompleted RefreshResult = iota
	// RefreshAborted means the scan yielded to input; the previous
	// registry is kept.
	RefreshAborted
	// RefreshInactive means the session is disabled.
	RefreshInactive
	// RefreshNoRule means no rule is registered for the language.
	RefreshNoRule
)

// String returns the result name.
func (r RefreshResult) String() string {
	switch r {
	case RefreshCompleted:
		return "completed"
	case RefreshAborted:
		return "aborted"
	case RefreshInactive:
		return "inactive"
	case RefreshNoRule:
		return "no-rule"
	default:
		return "unknown"
	}
}

// Stats counts session activity.
type Stats struct {
	Refreshes   int
	Aborted     int
	Identifiers int
	LastRefresh time.Duration
}

// Session colors the identifiers of one document.
type Session struct {
	id       uuid.UUID
	host     Host
	table    *lexrule.Table
	lang     string
	palettes *palette.Store
	popts    palette.Options

	registry *ident.Registry
	counter  ident.Counter
	active   bool
	ctx      context.Context

	ticker  *schedule.Ticker
	release func()
	idle    *schedule.Idle
	delay   time.Duration
	post    func(func())

	logger zerolog.Logger
	stats  Stats
}

// New creates an inactive session for host.
func New(host Host, opts ...Option) *Session {
	s := &Session{
		id:     uuid.New(),
		host:   host,
		table:  lexrule.NewTable(),
		popts:  palette.DefaultOptions(),
		post:   func(fn func()) { fn() },
		logger: zerolog.Nop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.palettes == nil {
		s.palettes = palette.NewStore(nil)
	}
	s.registry = ident.New(s.slots())
	return s
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Language returns the language tag used to look up the rule.
func (s *Session) Language() string {
	return s.lang
}

// SetLanguage switches the session's language. The registry is kept
// until the next Refresh.
func (s *Session) SetLanguage(lang string) {
	s.lang = lang
}

// Active reports whether the session is enabled.
func (s *Session) Active() bool {
	return s.active
}

// Registry returns the current registry.
func (s *Session) Registry() *ident.Registry {
	return s.registry
}

// Palette returns the palette in use.
func (s *Session) Palette() *palette.Palette {
	return s.palettes.Load()
}

// Stats returns activity counters.
func (s *Session) Stats() Stats {
	return s.stats
}

func (s *Session) rule() *lexrule.Rule {
	return s.table.Lookup(s.lang)
}

func (s *Session) slots() int {
	if n := s.palettes.Load().Len(); n > 0 {
		return n
	}
	return max(s.popts.Size, 1)
}

// Enable activates the session. It generates the palette if none is
// loaded, subscribes to the periodic ticker and runs a first refresh.
// ctx carries the logger and bounds scheduled refreshes.
func (s *Session) Enable(ctx context.Context) RefreshResult {
	if s.active {
		return RefreshCompleted
	}
	s.ctx = ctx
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		s.logger = l.With().Str("component", "colorid").Str("session", s.id.String()).Logger()
	}
	s.active = true
	s.registry = ident.New(s.slots())

	if s.palettes.Load().Len() == 0 {
		if _, err := s.RegeneratePalette(core.ColorDefault); err != nil {
			s.logger.Warn().Err(err).Msg("palette generation failed")
		}
	}

	if s.ticker != nil {
		s.release = s.ticker.Acquire(func() {
			s.post(s.scheduledRefresh)
		})
	}
	if s.delay > 0 {
		s.idle = schedule.NewIdle(s.delay, func() {
			s.post(s.scheduledRefresh)
		})
	}

	s.logger.Debug().Str("language", s.lang).Msg("enabled")
	return s.Refresh(ctx)
}

// Disable deactivates the session, stops its timers and resets the
// rotating counter.
func (s *Session) Disable() {
	if !s.active {
		return
	}
	s.active = false
	if s.release != nil {
		s.release()
		s.release = nil
	}
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	s.registry = ident.New(s.slots())
	s.counter.Reset()
	s.logger.Debug().Msg("disabled")
}

// NoteEdit tells the session the document changed; an idle refresh is
// scheduled once edits settle.
func (s *Session) NoteEdit() {
	if s.active && s.idle != nil {
		s.idle.Touch()
	}
}

func (s *Session) scheduledRefresh() {
	if s.ctx.Err() != nil {
		return
	}
	s.Refresh(s.ctx)
}

// Refresh rescans the whole document and replaces the registry. The scan
// yields when ctx is done or the host reports pending input; in that case
// the previous registry is kept. A completed refresh requests a redraw.
func (s *Session) Refresh(ctx context.Context) RefreshResult {
	if !s.active {
		return RefreshInactive
	}
	rule := s.rule()
	if rule == nil {
		return RefreshNoRule
	}

	started := time.Now()
	text := s.host.Runes()
	var spellings []string
	res := scan.Scan(s.host, rule, 0, len(text), func(start, end int) {
		spellings = append(spellings, string(text[start:end]))
	}, func() bool {
		return ctx.Err() == nil && !s.host.InputPending()
	})

	if res != scan.Completed {
		s.stats.Aborted++
		s.logger.Debug().Int("seen", len(spellings)).Msg("refresh aborted")
		return RefreshAborted
	}

	s.registry = ident.AssignFull(spellings, s.slots())
	s.stats.Refreshes++
	s.stats.Identifiers = s.registry.Len()
	s.stats.LastRefresh = time.Since(started)
	s.logger.Debug().
		Int("identifiers", s.registry.Len()).
		Dur("took", s.stats.LastRefresh).
		Msg("refresh completed")

	s.host.RequestRedraw()
	return RefreshCompleted
}

// ColorOf returns the color for spelling. Unknown spellings get the next
// rotating slot and are recorded, so repeated calls agree until the next
// Refresh. ok is false when the palette is empty.
func (s *Session) ColorOf(spelling string) (palette.Color, bool) {
	p := s.palettes.Load()
	if p.Len() == 0 {
		return palette.Color{}, false
	}
	slot, ok := s.registry.Slot(spelling)
	if !ok {
		slot = s.registry.Insert(spelling, s.counter.Next())
	}
	return p.At(slot)
}

// Colorize styles the identifiers in [from, limit) and marks them
// classified. It is the host's redraw-time entry point and runs to
// completion.
func (s *Session) Colorize(from, limit int) scan.Result {
	if !s.active {
		return scan.Completed
	}
	text := s.host.Runes()
	return scan.Scan(s.host, s.rule(), from, limit, func(start, end int) {
		if c, ok := s.ColorOf(string(text[start:end])); ok {
			s.host.SetForeground(start, end, c.Core())
		}
		s.host.MarkClassified(start, end)
	}, nil)
}

// SetRules replaces the rule table. Classifications made under the old
// rule stay until the host clears them; the next Refresh uses the new one.
func (s *Session) SetRules(t *lexrule.Table) {
	if t == nil {
		t = lexrule.NewTable()
	}
	s.table = t
}

// SetIdleDelay changes the idle refresh delay. A non-positive delay turns
// idle refreshes off.
func (s *Session) SetIdleDelay(delay time.Duration) {
	s.delay = delay
	if !s.active {
		return
	}
	switch {
	case delay <= 0 && s.idle != nil:
		s.idle.Stop()
		s.idle = nil
	case delay > 0 && s.idle != nil:
		s.idle.SetDelay(delay)
	case delay > 0:
		s.idle = schedule.NewIdle(delay, func() {
			s.post(s.scheduledRefresh)
		})
	}
}

// SetPaletteOptions replaces the options used by RegeneratePalette. The
// current palette is kept until the next regeneration.
func (s *Session) SetPaletteOptions(opts palette.Options) {
	s.popts = opts
}

// RegeneratePalette builds a palette whose lightness follows fg and swaps
// it in. The default color yields the midpoint lightness.
func (s *Session) RegeneratePalette(fg core.Color) (*palette.Palette, error) {
	lum, ok := palette.LuminanceOf(fg)
	opts := s.popts
	opts.Luminance = lum
	p, err := s.palettes.Regenerate(opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("size", p.Len()).
		Float64("luminance", p.Lightness()).
		Bool("from_foreground", ok).
		Msg("palette regenerated")

	if s.active {
		s.host.RequestRedraw()
	}
	return p, nil
}
