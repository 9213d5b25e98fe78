package colorid

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/idhue/internal/lexrule"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/schedule"
)

// Option configures a Session.
type Option func(*Session)

// WithRules sets the rule table the session resolves its language in.
func WithRules(t *lexrule.Table) Option {
	return func(s *Session) {
		if t != nil {
			s.table = t
		}
	}
}

// WithLanguage sets the language tag.
func WithLanguage(lang string) Option {
	return func(s *Session) {
		s.lang = lang
	}
}

// WithPaletteStore shares a palette store between sessions.
func WithPaletteStore(store *palette.Store) Option {
	return func(s *Session) {
		s.palettes = store
	}
}

// WithPaletteOptions sets the options used by RegeneratePalette.
// Luminance is ignored; it always comes from the foreground color.
func WithPaletteOptions(opts palette.Options) Option {
	return func(s *Session) {
		s.popts = opts
	}
}

// WithTicker subscribes the enabled session to a periodic refresh ticker,
// usually schedule.Shared().
func WithTicker(t *schedule.Ticker) Option {
	return func(s *Session) {
		s.ticker = t
	}
}

// WithIdleDelay schedules a refresh once edits reported through NoteEdit
// have settled for delay.
func WithIdleDelay(delay time.Duration) Option {
	return func(s *Session) {
		s.delay = delay
	}
}

// WithPost sets how timer-driven refreshes reach the session's goroutine.
// The default runs them on the timer goroutine, which is only correct
// for hosts without a UI loop of their own.
func WithPost(post func(func())) Option {
	return func(s *Session) {
		if post != nil {
			s.post = post
		}
	}
}

// WithLogger sets the session logger. Enable replaces it with the
// context logger when one is present.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}
