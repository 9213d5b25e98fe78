package highlight

import (
	"sort"
	"sync"

	"github.com/dshills/idhue/internal/engine/buffer"
)

// Registry maps language tags to highlighters.
type Registry struct {
	mu           sync.RWMutex
	highlighters map[string]Highlighter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{highlighters: make(map[string]Highlighter)}
}

// DefaultRegistry returns a registry holding the built-in highlighters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GoHighlighter())
	r.Register(JavaScriptHighlighter())
	r.Register(TypeScriptHighlighter())
	r.Register(PythonHighlighter())
	r.Register(CHighlighter())
	return r
}

// Register adds h under its language.
func (r *Registry) Register(h Highlighter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlighters[h.Language()] = h
}

// Get returns the highlighter for lang.
func (r *Registry) Get(lang string) (Highlighter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.highlighters[lang]
	return h, ok
}

// Languages returns the registered languages in lexical order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.highlighters))
	for lang := range r.highlighters {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Decorator writes highlighter tags into a buffer and keeps them current
// across edits. It remembers the lexer state at the end of every line so
// an edit only re-tokenizes lines until the state converges.
type Decorator struct {
	h      Highlighter
	states []LexerState
}

// NewDecorator creates a decorator using h.
func NewDecorator(h Highlighter) *Decorator {
	return &Decorator{h: h}
}

// Decorate re-tags the whole buffer.
func (d *Decorator) Decorate(b *buffer.Buffer) {
	n := b.LineCount()
	d.states = make([]LexerState, n)
	state := LexerStateNormal
	for line := 0; line < n; line++ {
		state = d.decorateLine(b, line, state)
		d.states[line] = state
	}
}

// Update re-tags the lines affected by e, which must be the most recent
// edit applied to b. It returns the first and last line it re-tagged;
// these can extend past the edit until the lexer state converges.
func (d *Decorator) Update(b *buffer.Buffer, e buffer.Edit) (first, last int) {
	n := b.LineCount()
	delta := n - len(d.states)
	first = b.LineOf(e.Start)
	if len(d.states) == 0 || first > len(d.states) {
		d.Decorate(b)
		return 0, n - 1
	}
	editEnd := b.LineOf(e.NewEnd)

	old := d.states
	states := make([]LexerState, n)
	copy(states, old[:min(first, len(old))])

	state := LexerStateNormal
	if first > 0 {
		state = states[first-1]
	}
	last = first
	for line := first; line < n; line++ {
		state = d.decorateLine(b, line, state)
		states[line] = state
		last = line
		if line < editEnd {
			continue
		}
		if oi := line - delta; oi >= 0 && oi < len(old) && old[oi] == state {
			copy(states[line+1:], old[oi+1:])
			break
		}
	}
	d.states = states
	return first, last
}

// stateAt returns the lexer state at the end of line.
func (d *Decorator) stateAt(line int) LexerState {
	if line < 0 || line >= len(d.states) {
		return LexerStateNormal
	}
	return d.states[line]
}

func (d *Decorator) decorateLine(b *buffer.Buffer, line int, prev LexerState) LexerState {
	start, end, err := b.LineRange(line)
	if err != nil {
		return prev
	}
	b.ClearTags(start, end)
	tokens, state := d.h.HighlightLine(b.Runes()[start:end], prev)
	for _, tok := range tokens {
		b.SetTag(start+tok.Start, start+tok.End, tok.Type.Tag())
	}
	return state
}
