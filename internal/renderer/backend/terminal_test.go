package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/idhue/internal/renderer/core"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	for term.HasPendingEvent() {
		term.PollEvent()
	}
	return term, sim
}

func TestTerminalSize(t *testing.T) {
	term, _ := newSimTerminal(t, 40, 10)
	w, h := term.Size()
	if w != 40 || h != 10 {
		t.Errorf("expected size (40, 10), got (%d, %d)", w, h)
	}
}

func TestTerminalSetGetCell(t *testing.T) {
	term, sim := newSimTerminal(t, 20, 5)

	style := core.Style{
		Foreground: core.ColorFromRGB(200, 100, 50),
		Background: core.ColorFromRGB(10, 20, 30),
		Attributes: core.AttrItalic | core.AttrBold,
	}
	term.SetCell(3, 2, core.NewStyledCell('x', style))
	term.Show()

	got := term.GetCell(3, 2)
	if got.Rune != 'x' {
		t.Errorf("rune = %q, want 'x'", got.Rune)
	}
	if !got.Style.Equals(style) {
		t.Errorf("style = %+v, want %+v", got.Style, style)
	}

	cells, w, _ := sim.GetContents()
	cell := cells[2*w+3]
	if len(cell.Runes) == 0 || cell.Runes[0] != 'x' {
		t.Errorf("simulated cell = %v", cell.Runes)
	}
	fg, _, _ := cell.Style.Decompose()
	if r, g, b := fg.RGB(); r != 200 || g != 100 || b != 50 {
		t.Errorf("simulated fg = %d,%d,%d", r, g, b)
	}

	// Out of bounds is ignored.
	term.SetCell(-1, 0, core.NewStyledCell('y', style))
	term.SetCell(100, 0, core.NewStyledCell('y', style))
}

func TestTerminalDefaultColors(t *testing.T) {
	term, _ := newSimTerminal(t, 5, 1)
	term.SetCell(0, 0, core.NewStyledCell('a', core.DefaultStyle()))

	got := term.GetCell(0, 0)
	if !got.Style.Foreground.IsDefault() || !got.Style.Background.IsDefault() {
		t.Errorf("style = %+v, want default colors", got.Style)
	}
}

func TestTerminalKeyEvents(t *testing.T) {
	term, sim := newSimTerminal(t, 10, 2)

	tests := []struct {
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want Event
	}{
		{tcell.KeyRune, 'q', tcell.ModNone, Event{Type: EventKey, Key: KeyRune, Rune: 'q'}},
		{tcell.KeyPgDn, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyPageDown}},
		{tcell.KeyBackspace2, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyBackspace}},
		{tcell.KeyCtrlR, 0, tcell.ModCtrl, Event{Type: EventKey, Key: KeyCtrlR, Mod: ModCtrl}},
		{tcell.KeyF9, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyNone}},
	}
	for _, tt := range tests {
		sim.InjectKey(tt.key, tt.r, tt.mod)
		if !term.HasPendingEvent() {
			t.Fatalf("no pending event after injecting %v", tt.key)
		}
		got := term.PollEvent()
		if got.Type != tt.want.Type || got.Key != tt.want.Key || got.Mod != tt.want.Mod {
			t.Errorf("event for %v = %+v, want %+v", tt.key, got, tt.want)
		}
		if tt.want.Key == KeyRune && got.Rune != tt.want.Rune {
			t.Errorf("rune = %q, want %q", got.Rune, tt.want.Rune)
		}
	}
}

func TestTerminalInterrupt(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 2)

	ran := false
	if err := term.PostEvent(Interrupt(func() { ran = true })); err != nil {
		t.Fatalf("PostEvent failed: %v", err)
	}
	if !term.HasPendingEvent() {
		t.Fatal("interrupt should be pending")
	}

	ev := term.PollEvent()
	if ev.Type != EventInterrupt || ev.Run == nil {
		t.Fatalf("event = %+v, want interrupt", ev)
	}
	ev.Run()
	if !ran {
		t.Error("interrupt function did not run")
	}
}

func TestTerminalPostKey(t *testing.T) {
	term, _ := newSimTerminal(t, 10, 2)

	if err := term.PostEvent(Event{Type: EventKey, Key: KeyCtrlQ}); err != nil {
		t.Fatal(err)
	}
	if ev := term.PollEvent(); ev.Key != KeyCtrlQ {
		t.Errorf("posted key = %+v", ev)
	}
}

func TestModMask(t *testing.T) {
	m := ModCtrl | ModAlt
	if !m.Has(ModCtrl) || !m.Has(ModAlt) || m.Has(ModShift) {
		t.Errorf("ModMask.Has mismatch for %d", m)
	}
	if convertMod(convertToTcellMod(m)) != m {
		t.Error("modifier conversion should round-trip")
	}
}
