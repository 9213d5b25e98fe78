package colorid

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/idhue/internal/engine/buffer"
	"github.com/dshills/idhue/internal/lexrule"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/renderer/core"
	"github.com/dshills/idhue/internal/renderer/highlight"
	"github.com/dshills/idhue/internal/scan"
	"github.com/dshills/idhue/internal/schedule"
)

func testRules(t *testing.T) *lexrule.Table {
	t.Helper()
	rule, err := lexrule.NewRule(lexrule.Patterns{
		Context:    `[^.]`,
		Identifier: `[a-zA-Z_$][a-zA-Z0-9_$]*`,
	}, lexrule.Undecorated, "variable")
	require.NoError(t, err)

	table := lexrule.NewTable()
	table.Register("javascript", rule)
	return table
}

func newTestSession(t *testing.T, text string, size int, opts ...Option) (*Session, *BufferHost) {
	t.Helper()
	host := NewBufferHost(buffer.NewFromString(text, buffer.WithLanguage("javascript")))
	popts := palette.DefaultOptions()
	popts.Size = size
	opts = append([]Option{
		WithRules(testRules(t)),
		WithLanguage(host.Language()),
		WithPaletteOptions(popts),
	}, opts...)
	return New(host, opts...), host
}

func slotOf(t *testing.T, s *Session, spelling string) int {
	t.Helper()
	slot, ok := s.Registry().Slot(spelling)
	require.True(t, ok, "%q not registered", spelling)
	return slot
}

func TestEndToEnd(t *testing.T) {
	s, _ := newTestSession(t, "x y x z", 2)

	require.Equal(t, RefreshCompleted, s.Enable(context.Background()))

	assert.Equal(t, 0, slotOf(t, s, "x"))
	assert.Equal(t, 1, slotOf(t, s, "y"))
	assert.Equal(t, 0, slotOf(t, s, "z"))

	x, ok := s.ColorOf("x")
	require.True(t, ok)
	y, _ := s.ColorOf("y")
	z, _ := s.ColorOf("z")
	assert.Equal(t, x, z)
	assert.NotEqual(t, x, y)
	assert.NotEqual(t, z, y)
}

func TestRefreshIdempotent(t *testing.T) {
	s, _ := newTestSession(t, "const a = b.c + d;\nlet e = a", 10)
	s.Enable(context.Background())

	first := s.Registry()
	require.Equal(t, RefreshCompleted, s.Refresh(context.Background()))

	assert.True(t, first.Equal(s.Registry()))
	assert.Equal(t, []string{"const", "a", "b", "d", "let", "e"}, s.Registry().Spellings())
	assert.Equal(t, 2, s.Stats().Refreshes)
}

func TestRefreshRequestsRedraw(t *testing.T) {
	s, host := newTestSession(t, "a b", 4)
	redraws := 0
	host.Redraw = func() { redraws++ }

	s.Enable(context.Background())
	before := redraws
	s.Refresh(context.Background())

	assert.Equal(t, before+1, redraws)
}

func TestColorOfRotatingAssignment(t *testing.T) {
	s, _ := newTestSession(t, "a b", 4)
	s.Enable(context.Background())

	first, ok := s.ColorOf("fresh")
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		again, _ := s.ColorOf("fresh")
		assert.Equal(t, first, again)
	}

	slot := slotOf(t, s, "fresh")
	assert.Equal(t, 0, slot, "counter starts at zero")

	s.ColorOf("other")
	assert.Equal(t, 1, slotOf(t, s, "other"))
}

func TestColorOfEmptyPalette(t *testing.T) {
	s, _ := newTestSession(t, "a", 4)

	_, ok := s.ColorOf("a")
	assert.False(t, ok)
}

func TestRefreshAbortKeepsRegistry(t *testing.T) {
	s, host := newTestSession(t, "x y x z", 4)
	s.Enable(context.Background())

	_, err := host.Replace(0, host.Len(), "a b c")
	require.NoError(t, err)

	polls := 0
	host.Pending = func() bool {
		polls++
		return polls > 1
	}

	assert.Equal(t, RefreshAborted, s.Refresh(context.Background()))
	assert.Equal(t, 3, s.Registry().Len())
	_, ok := s.Registry().Slot("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Stats().Aborted)
}

func TestCancellationVisitsOne(t *testing.T) {
	host := NewBufferHost(buffer.NewFromString("x y x z"))
	rule := testRules(t).Lookup("javascript")

	visited := 0
	res := scan.Scan(host, rule, 0, host.Len(), func(int, int) {
		visited++
	}, func() bool { return visited == 0 })

	assert.Equal(t, scan.Aborted, res)
	assert.Equal(t, 1, visited)
}

func TestRefreshContextCanceled(t *testing.T) {
	s, _ := newTestSession(t, "x y", 4)
	s.Enable(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, RefreshAborted, s.Refresh(ctx))
	assert.Equal(t, 2, s.Registry().Len())
}

func TestRefreshNoOps(t *testing.T) {
	s, _ := newTestSession(t, "x", 4)
	assert.Equal(t, RefreshInactive, s.Refresh(context.Background()))

	s.SetLanguage("cobol")
	assert.Equal(t, RefreshNoRule, s.Enable(context.Background()))
	assert.Equal(t, 0, s.Registry().Len())
	assert.Equal(t, scan.NoRule, s.Colorize(0, 1))
}

func TestColorize(t *testing.T) {
	s, host := newTestSession(t, "foo.bar foo", 10)
	s.Enable(context.Background())

	require.Equal(t, scan.Completed, s.Colorize(0, host.Len()))

	want, ok := s.ColorOf("foo")
	require.True(t, ok)

	spans := host.ForegroundSpans(0, host.Len())
	require.Len(t, spans, 2)
	assert.Equal(t, core.StyleSpan{Start: 0, End: 3, Style: core.NewStyle(want.Core())}, spans[0])
	assert.Equal(t, core.StyleSpan{Start: 8, End: 11, Style: core.NewStyle(want.Core())}, spans[1])

	assert.True(t, host.Classified(0))
	assert.False(t, host.Classified(4), "member access is not classified")
}

func TestColorizeInactive(t *testing.T) {
	s, host := newTestSession(t, "foo", 10)

	assert.Equal(t, scan.Completed, s.Colorize(0, host.Len()))
	assert.Empty(t, host.ForegroundSpans(0, host.Len()))
}

func TestRegeneratePalette(t *testing.T) {
	s, _ := newTestSession(t, "a", 6)

	p, err := s.RegeneratePalette(core.ColorFromRGB(255, 255, 255))
	require.NoError(t, err)
	assert.Equal(t, 6, p.Len())
	assert.InDelta(t, palette.DefaultMaxLuminance, p.Lightness(), 1e-9)
	assert.Same(t, p, s.Palette())

	p, err = s.RegeneratePalette(core.ColorDefault)
	require.NoError(t, err)
	assert.InDelta(t, palette.DefaultLuminance, p.Lightness(), 1e-9)
}

func TestRegeneratePaletteInvalid(t *testing.T) {
	s, _ := newTestSession(t, "a", 0)

	_, err := s.RegeneratePalette(core.ColorDefault)
	assert.ErrorIs(t, err, palette.ErrInvalidCount)
	assert.Nil(t, s.Palette())
}

func TestSharedPaletteStore(t *testing.T) {
	store := palette.NewStore(nil)
	a, _ := newTestSession(t, "shared", 5, WithPaletteStore(store))
	b, _ := newTestSession(t, "shared", 5, WithPaletteStore(store))

	a.Enable(context.Background())
	b.Enable(context.Background())

	ca, _ := a.ColorOf("shared")
	cb, _ := b.ColorOf("shared")
	assert.Equal(t, ca, cb)
	assert.Same(t, a.Palette(), b.Palette())
}

func TestDisableResetsCounter(t *testing.T) {
	s, _ := newTestSession(t, "", 4)
	s.Enable(context.Background())

	s.ColorOf("p")
	s.ColorOf("q")
	assert.Equal(t, 1, slotOf(t, s, "q"))

	s.Disable()
	assert.False(t, s.Active())
	s.Enable(context.Background())

	s.ColorOf("q")
	assert.Equal(t, 0, slotOf(t, s, "q"))
}

func TestTickerLifecycle(t *testing.T) {
	tk := schedule.NewTicker(5 * time.Millisecond)
	posted := make(chan func(), 16)
	post := func(fn func()) {
		select {
		case posted <- fn:
		default:
		}
	}

	a, host := newTestSession(t, "one", 4, WithTicker(tk), WithPost(post))
	b, _ := newTestSession(t, "two", 4, WithTicker(tk), WithPost(post))

	a.Enable(context.Background())
	b.Enable(context.Background())
	assert.Equal(t, 2, tk.Refs())

	_, err := host.Insert(host.Len(), " three")
	require.NoError(t, err)

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}

	a.Disable()
	assert.Equal(t, 1, tk.Refs())
	assert.True(t, tk.Active())
	b.Disable()
	assert.False(t, tk.Active())
}

func TestIdleRefreshAfterEdit(t *testing.T) {
	posted := make(chan func(), 4)
	s, host := newTestSession(t, "alpha", 4,
		WithIdleDelay(10*time.Millisecond),
		WithPost(func(fn func()) { posted <- fn }),
	)
	host.OnEdit(func(buffer.Edit) { s.NoteEdit() })
	s.Enable(context.Background())

	_, err := host.Insert(host.Len(), " beta")
	require.NoError(t, err)

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("idle refresh not scheduled")
	}
	assert.Equal(t, 1, slotOf(t, s, "beta"))
}

func TestEnableUsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())

	s, _ := newTestSession(t, "a", 4)
	s.Enable(ctx)

	assert.Contains(t, buf.String(), `"component":"colorid"`)
	assert.Contains(t, buf.String(), s.ID().String())
}

func TestRefreshResultString(t *testing.T) {
	assert.Equal(t, "completed", RefreshCompleted.String())
	assert.Equal(t, "aborted", RefreshAborted.String())
	assert.Equal(t, "inactive", RefreshInactive.String())
	assert.Equal(t, "no-rule", RefreshNoRule.String())
	assert.Equal(t, "unknown", RefreshResult(9).String())
}

func goSession(t *testing.T, text string) (*Session, *BufferHost) {
	t.Helper()
	rule, err := lexrule.NewRule(lexrule.Patterns{
		Context:    `[^.]`,
		Identifier: `[a-zA-Z_][a-zA-Z0-9_]*`,
	}, lexrule.Undecorated)
	require.NoError(t, err)
	table := lexrule.NewTable()
	table.Register("go", rule)

	host := NewBufferHost(buffer.NewFromString(text, buffer.WithLanguage("go")))
	return New(host, WithRules(table), WithLanguage("go")), host
}

func TestOpeningCommentHidesIdentifiersBelow(t *testing.T) {
	s, host := goSession(t, "x := 1\nalpha := beta\n")
	d := highlight.NewDecorator(highlight.GoHighlighter())
	d.Decorate(host.Buffer)
	host.OnEdit(func(e buffer.Edit) { d.Update(host.Buffer, e) })

	require.Equal(t, RefreshCompleted, s.Enable(context.Background()))
	s.Colorize(0, host.Len())
	require.True(t, host.Classified(7), "alpha classified before the edit")

	_, err := host.Insert(0, "/*")
	require.NoError(t, err)

	line1, _, err := host.LineRange(1)
	require.NoError(t, err)
	assert.Equal(t, "comment", host.TagAt(line1))
	assert.False(t, host.Classified(line1), "re-tagged line keeps no marker")

	spans, res := scan.Collect(host, s.rule(), 0, host.Len(), nil)
	assert.Equal(t, scan.Completed, res)
	for _, sp := range spans {
		t.Errorf("identifier %q scanned inside the comment", sp.Text(host.Runes()))
	}

	require.Equal(t, RefreshCompleted, s.Refresh(context.Background()))
	assert.Equal(t, 0, s.Registry().Len())
}

func TestSetRules(t *testing.T) {
	s, _ := newTestSession(t, "a b", 4)
	require.Equal(t, RefreshCompleted, s.Enable(context.Background()))

	s.SetRules(lexrule.NewTable())
	assert.Equal(t, RefreshNoRule, s.Refresh(context.Background()))

	s.SetRules(testRules(t))
	assert.Equal(t, RefreshCompleted, s.Refresh(context.Background()))
	assert.Equal(t, 2, s.Registry().Len())
}

func TestSetIdleDelay(t *testing.T) {
	posted := make(chan func(), 4)
	s, host := newTestSession(t, "alpha", 4,
		WithPost(func(fn func()) { posted <- fn }),
	)
	host.OnEdit(func(buffer.Edit) { s.NoteEdit() })
	s.Enable(context.Background())

	_, err := host.Insert(host.Len(), " beta")
	require.NoError(t, err)
	select {
	case <-posted:
		t.Fatal("no idle refresh expected without a delay")
	case <-time.After(30 * time.Millisecond):
	}

	s.SetIdleDelay(10 * time.Millisecond)
	_, err = host.Insert(host.Len(), " gamma")
	require.NoError(t, err)
	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("idle refresh not scheduled")
	}
	assert.Equal(t, 2, slotOf(t, s, "gamma"))

	s.SetIdleDelay(0)
	_, err = host.Insert(host.Len(), " delta")
	require.NoError(t, err)
	select {
	case <-posted:
		t.Fatal("idle refresh should be off")
	case <-time.After(30 * time.Millisecond):
	}
}
