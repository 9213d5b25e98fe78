// Package viewer is a terminal viewer that colors identifiers as the user
// scrolls and types.
//
// The viewer owns one event loop. Timer-driven refreshes reach it as
// interrupt events posted to the backend, so the session and the buffer
// are only touched from the loop goroutine.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/colorid"
	"github.com/dshills/idhue/internal/engine/buffer"
	"github.com/dshills/idhue/internal/engine/history"
	"github.com/dshills/idhue/internal/lexrule"
	"github.com/dshills/idhue/internal/logging"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/renderer"
	"github.com/dshills/idhue/internal/renderer/backend"
	"github.com/dshills/idhue/internal/renderer/highlight"
	"github.com/dshills/idhue/internal/renderer/statusline"
	"github.com/dshills/idhue/internal/schedule"
)

// ErrUnknownTheme is returned by SetTheme for an unregistered theme name.
var ErrUnknownTheme = errors.Base("unknown theme")

// Config configures a Viewer.
type Config struct {
	// Name is the file name shown in the status line.
	Name string

	// Rules resolves the buffer's language to an identifier rule.
	Rules *lexrule.Table

	// Palettes is shared with other sessions; nil creates a private store.
	Palettes       *palette.Store
	PaletteOptions palette.Options

	// Interval is the periodic refresh period; zero disables it.
	Interval time.Duration
	// IdleDelay is how long edits must settle before a refresh.
	IdleDelay time.Duration

	// Themes and Theme select the color theme.
	Themes *highlight.ThemeRegistry
	Theme  string

	// Highlighters decorate the buffer with syntax tags.
	Highlighters *highlight.Registry

	Renderer renderer.Options
	Logger   zerolog.Logger
}

// DefaultConfig returns a configuration with the built-in themes and
// highlighters and the default refresh timing.
func DefaultConfig() Config {
	return Config{
		Rules:          lexrule.NewTable(),
		PaletteOptions: palette.DefaultOptions(),
		Interval:       schedule.DefaultInterval,
		IdleDelay:      schedule.DefaultIdleDelay,
		Themes:         highlight.NewThemeRegistry(),
		Theme:          highlight.DefaultTheme().Name,
		Highlighters:   highlight.DefaultRegistry(),
		Renderer:       renderer.DefaultOptions(),
		Logger:         zerolog.Nop(),
	}
}

// Viewer displays one buffer.
type Viewer struct {
	cfg     Config
	backend backend.Backend
	buf     *buffer.Buffer
	host    *colorid.BufferHost
	session *colorid.Session
	history *history.History

	decorator *highlight.Decorator
	renderer  *renderer.Renderer
	status    *statusline.StatusLine
	themes    []string

	cursor   int
	modified bool
	dirty    bool
	quit     bool
	last     colorid.RefreshResult

	ctx    context.Context
	logger zerolog.Logger
}

// New creates a viewer for buf drawing on b. Nothing is drawn until Run.
func New(b backend.Backend, buf *buffer.Buffer, cfg Config) *Viewer {
	def := DefaultConfig()
	if cfg.Rules == nil {
		cfg.Rules = def.Rules
	}
	if cfg.Themes == nil {
		cfg.Themes = def.Themes
	}
	if cfg.Highlighters == nil {
		cfg.Highlighters = def.Highlighters
	}
	if cfg.PaletteOptions.Size == 0 {
		cfg.PaletteOptions = def.PaletteOptions
	}
	if cfg.Renderer.TabWidth == 0 {
		cfg.Renderer = def.Renderer
	}

	v := &Viewer{
		cfg:     cfg,
		backend: b,
		buf:     buf,
		status:  statusline.New(),
		history: history.New(0),
		themes:  cfg.Themes.Names(),
		dirty:   true,
		ctx:     context.Background(),
		logger:  logging.WithComponent(cfg.Logger, "viewer"),
	}

	theme, ok := cfg.Themes.Get(cfg.Theme)
	if !ok {
		theme = highlight.DefaultTheme()
	}
	v.renderer = renderer.New(b, theme, cfg.Renderer)

	if h, ok := cfg.Highlighters.Get(buf.Language()); ok {
		v.decorator = highlight.NewDecorator(h)
	}

	v.host = colorid.NewBufferHost(buf)
	v.host.Redraw = func() { v.dirty = true }
	v.host.Pending = b.HasPendingEvent

	opts := []colorid.Option{
		colorid.WithRules(cfg.Rules),
		colorid.WithLanguage(buf.Language()),
		colorid.WithPaletteOptions(cfg.PaletteOptions),
		colorid.WithIdleDelay(cfg.IdleDelay),
		colorid.WithPost(v.Post),
		colorid.WithLogger(v.logger),
	}
	if cfg.Palettes != nil {
		opts = append(opts, colorid.WithPaletteStore(cfg.Palettes))
	}
	if cfg.Interval > 0 {
		opts = append(opts, colorid.WithTicker(schedule.SharedAt(cfg.Interval)))
	}
	v.session = colorid.New(v.host, opts...)

	buf.OnEdit(v.onEdit)
	return v
}

// Session returns the viewer's colorizer session.
func (v *Viewer) Session() *colorid.Session {
	return v.session
}

// Buffer returns the displayed buffer.
func (v *Viewer) Buffer() *buffer.Buffer {
	return v.buf
}

// Cursor returns the cursor offset.
func (v *Viewer) Cursor() int {
	return v.cursor
}

// Theme returns the active theme.
func (v *Viewer) Theme() *highlight.Theme {
	return v.renderer.Theme()
}

// Post runs fn on the event loop. It is safe to call from any goroutine.
func (v *Viewer) Post(fn func()) {
	if err := v.backend.PostEvent(backend.Interrupt(fn)); err != nil {
		v.logger.Debug().Err(err).Msg("dropped posted event")
	}
}

// Run initializes the backend and processes events until the user quits,
// ctx is done or the backend closes.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.backend.Init(); err != nil {
		return errors.Errorf("starting viewer: %w", err)
	}
	defer v.backend.Shutdown()

	v.Start(ctx)
	defer v.session.Disable()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			v.Post(func() { v.quit = true })
		case <-done:
		}
	}()

	v.Draw()
	for !v.quit {
		ev := v.backend.PollEvent()
		if ev.Type == backend.EventClosed {
			break
		}
		v.HandleEvent(ctx, ev)
		if v.dirty && !v.backend.HasPendingEvent() {
			v.Draw()
		}
	}
	return nil
}

// Start decorates the buffer, derives the palette from the theme and
// enables the session. Run calls it after initializing the backend.
func (v *Viewer) Start(ctx context.Context) {
	v.resize(v.backend.Size())
	if v.decorator != nil {
		v.decorator.Decorate(v.buf)
	}
	v.regeneratePalette()
	ctx = v.cfg.Logger.WithContext(ctx)
	v.ctx = ctx
	v.noteRefresh(v.session.Enable(ctx))
	v.logger.Info().
		Str("file", v.cfg.Name).
		Str("language", v.buf.Language()).
		Int("lines", v.buf.LineCount()).
		Msg("viewer started")
}

// Quit reports whether the user asked to quit.
func (v *Viewer) Quit() bool {
	return v.quit
}

// HandleEvent processes one backend event.
func (v *Viewer) HandleEvent(ctx context.Context, ev backend.Event) {
	switch ev.Type {
	case backend.EventInterrupt:
		if ev.Run != nil {
			ev.Run()
		}
	case backend.EventResize:
		v.resize(ev.Width, ev.Height)
	case backend.EventKey:
		v.handleKey(ctx, ev)
	}
}

func (v *Viewer) handleKey(ctx context.Context, ev backend.Event) {
	v.status.ClearMessage()
	v.dirty = true

	switch ev.Key {
	case backend.KeyCtrlQ, backend.KeyCtrlC:
		v.quit = true
	case backend.KeyCtrlR:
		res := v.session.Refresh(ctx)
		v.noteRefresh(res)
		v.status.SetMessage("refresh "+res.String(), statusline.MessageInfo)
	case backend.KeyCtrlT:
		v.cycleTheme()
	case backend.KeyCtrlP:
		v.toggle(ctx)
	case backend.KeyCtrlL:
		v.backend.Clear()
	case backend.KeyCtrlZ:
		v.undo()
	case backend.KeyCtrlY:
		v.redo()
	case backend.KeyUp:
		v.moveLine(-1)
	case backend.KeyDown:
		v.moveLine(1)
	case backend.KeyPageUp:
		v.moveLine(-max(v.renderer.TextHeight()-1, 1))
	case backend.KeyPageDown:
		v.moveLine(max(v.renderer.TextHeight()-1, 1))
	case backend.KeyLeft:
		v.cursor = max(v.cursor-1, 0)
	case backend.KeyRight:
		v.cursor = min(v.cursor+1, v.buf.Len())
	case backend.KeyHome:
		start, _, _ := v.buf.LineRange(v.buf.LineOf(v.cursor))
		v.cursor = start
	case backend.KeyEnd:
		_, end, _ := v.buf.LineRange(v.buf.LineOf(v.cursor))
		v.cursor = end
	case backend.KeyEnter:
		v.insert("\n")
	case backend.KeyTab:
		v.insert("\t")
	case backend.KeyRune:
		v.insert(string(ev.Rune))
	case backend.KeyBackspace:
		if v.cursor > 0 {
			v.deleteRange(v.cursor-1, v.cursor)
		}
	case backend.KeyDelete:
		if v.cursor < v.buf.Len() {
			v.deleteRange(v.cursor, v.cursor+1)
		}
	default:
		v.dirty = false
	}
}

func (v *Viewer) moveLine(delta int) {
	line := v.buf.LineOf(v.cursor)
	start, _, _ := v.buf.LineRange(line)
	col := v.cursor - start

	target := max(0, min(line+delta, v.buf.LineCount()-1))
	tstart, tend, err := v.buf.LineRange(target)
	if err != nil {
		return
	}
	v.cursor = min(tstart+col, tend)
}

func (v *Viewer) insert(text string) {
	end, err := v.buf.Insert(v.cursor, text)
	if err != nil {
		v.status.SetMessage(err.Error(), statusline.MessageError)
		return
	}
	v.history.Record(history.NewInsert(v.cursor, text, v.cursor, end))
	v.cursor = end
}

func (v *Viewer) deleteRange(start, end int) {
	deleted := v.buf.Slice(start, end)
	if err := v.buf.Delete(start, end); err != nil {
		v.status.SetMessage(err.Error(), statusline.MessageError)
		return
	}
	v.history.Record(history.NewDelete(start, deleted, v.cursor, start))
	v.cursor = start
}

func (v *Viewer) undo() {
	cur, err := v.history.Undo(v.buf)
	if err != nil {
		v.status.SetMessage(err.Error(), statusline.MessageWarning)
		return
	}
	v.cursor = min(cur, v.buf.Len())
}

func (v *Viewer) redo() {
	cur, err := v.history.Redo(v.buf)
	if err != nil {
		v.status.SetMessage(err.Error(), statusline.MessageWarning)
		return
	}
	v.cursor = min(cur, v.buf.Len())
}

// onEdit keeps decorations current and drops stale identifier colors on
// the edited lines, and on every line the decorator re-tagged, before the
// session hears about the edit.
func (v *Viewer) onEdit(e buffer.Edit) {
	v.modified = true
	first, last := v.buf.LineOf(e.Start), v.buf.LineOf(e.NewEnd)
	if v.decorator != nil {
		f, l := v.decorator.Update(v.buf, e)
		first, last = min(first, f), max(last, l)
	}
	start, _, _ := v.buf.LineRange(first)
	_, end, _ := v.buf.LineRange(last)
	v.buf.ClearForeground(start, end)
	v.session.NoteEdit()
	v.dirty = true
}

func (v *Viewer) toggle(ctx context.Context) {
	if v.session.Active() {
		v.session.Disable()
		v.buf.ClearForeground(0, v.buf.Len())
		v.buf.ClearClassified(0, v.buf.Len())
		v.status.SetMessage("identifier colors off", statusline.MessageInfo)
		return
	}
	v.noteRefresh(v.session.Enable(v.cfg.Logger.WithContext(ctx)))
	v.status.SetMessage("identifier colors on", statusline.MessageInfo)
}

// SetTheme switches to the named theme and regenerates the palette from
// its foreground.
func (v *Viewer) SetTheme(name string) error {
	theme, ok := v.cfg.Themes.Get(name)
	if !ok {
		return errors.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	v.renderer.SetTheme(theme)
	v.regeneratePalette()
	v.dirty = true
	return nil
}

func (v *Viewer) cycleTheme() {
	if len(v.themes) == 0 {
		return
	}
	next := v.themes[0]
	for i, name := range v.themes {
		if name == v.Theme().Name {
			next = v.themes[(i+1)%len(v.themes)]
			break
		}
	}
	if err := v.SetTheme(next); err != nil {
		v.status.SetMessage(err.Error(), statusline.MessageError)
		return
	}
	v.status.SetMessage("theme "+next, statusline.MessageInfo)
}

// SetRules replaces the identifier rules and reclassifies the buffer.
func (v *Viewer) SetRules(t *lexrule.Table) {
	v.cfg.Rules = t
	v.session.SetRules(t)
	v.buf.ClearForeground(0, v.buf.Len())
	v.buf.ClearClassified(0, v.buf.Len())
	if v.session.Active() {
		v.noteRefresh(v.session.Refresh(v.ctx))
	}
	v.dirty = true
}

// SetIdleDelay changes how long edits must settle before a refresh.
func (v *Viewer) SetIdleDelay(delay time.Duration) {
	v.cfg.IdleDelay = delay
	v.session.SetIdleDelay(delay)
}

// RegeneratePalette rebuilds the palette with opts, keeping the lightness
// tied to the theme foreground.
func (v *Viewer) RegeneratePalette(opts palette.Options) {
	v.cfg.PaletteOptions = opts
	v.session.SetPaletteOptions(opts)
	v.regeneratePalette()
}

func (v *Viewer) regeneratePalette() {
	if _, err := v.session.RegeneratePalette(v.Theme().Foreground); err != nil {
		v.logger.Warn().Err(err).Msg("palette regeneration failed")
		v.status.SetMessage(fmt.Sprintf("palette: %v", err), statusline.MessageError)
	}
	v.dirty = true
}

func (v *Viewer) noteRefresh(res colorid.RefreshResult) {
	v.last = res
	v.dirty = true
}

func (v *Viewer) resize(w, h int) {
	v.renderer.Resize(w, h)
	v.status.Resize(w)
	v.dirty = true
}

// Draw colorizes the visible region and renders a frame.
func (v *Viewer) Draw() {
	v.dirty = false
	v.renderer.ScrollToCursor(v.buf, v.cursor)

	from, limit := v.renderer.VisibleRange(v.buf)
	v.session.Colorize(from, limit)

	line := v.buf.LineOf(v.cursor)
	start, _, _ := v.buf.LineRange(line)
	stats := v.session.Stats()
	v.status.SetFile(v.cfg.Name, v.buf.Language())
	v.status.SetModified(v.modified)
	v.status.SetPosition(line+1, v.cursor-start+1)
	v.status.SetColorizer(v.session.Registry().Len(), v.session.Palette().Len(), v.last.String(), stats.LastRefresh)
	v.status.SetTheme(v.Theme().Name)

	v.renderer.Render(v.buf, v.cursor)
	_, h := v.renderer.Size()
	if h > 0 {
		v.status.Render(v.backend, h-1, v.Theme().Base())
	}
	v.renderer.Show()
}
