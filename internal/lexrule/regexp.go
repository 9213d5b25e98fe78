package lexrule

import (
	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPattern is returned when a rule pattern fails to compile.
var ErrInvalidPattern = errors.Base("invalid pattern")

// contextWindow bounds how far back MatchesBefore looks.
const contextWindow = 256

// virtualNewline stands in for the text before the start of a document.
var virtualNewline = []rune{'\n'}

// Patterns are the regular expressions of a rule, in .NET/Perl syntax.
type Patterns struct {
	// Context must match the text immediately before an identifier.
	// It is matched against the current line up to the candidate, with
	// the newline ending the previous line included. Empty means any
	// context is accepted.
	Context string

	// Identifier matches an identifier. If it has a capture group, the
	// first group is the identifier text; otherwise the whole match is.
	Identifier string

	// Exclude, when set, rejects identifiers whose whole spelling matches.
	Exclude string
}

// RegexpMatcher is a Matcher backed by regexp2 patterns.
type RegexpMatcher struct {
	patterns Patterns
	context  *regexp2.Regexp
	at       *regexp2.Regexp
	search   *regexp2.Regexp
	exclude  *regexp2.Regexp
}

// NewRegexpMatcher compiles p.
func NewRegexpMatcher(p Patterns) (*RegexpMatcher, error) {
	if p.Identifier == "" {
		return nil, errors.Errorf("%w: empty identifier pattern", ErrInvalidPattern)
	}
	m := &RegexpMatcher{patterns: p}

	var err error
	if m.at, err = compile(`\G(?:` + p.Identifier + `)`, regexp2.None); err != nil {
		return nil, err
	}
	if m.search, err = compile(`(?:`+p.Identifier+`)`, regexp2.None); err != nil {
		return nil, err
	}
	if p.Context != "" {
		if m.context, err = compile(`(?:`+p.Context+`)\z`, regexp2.RightToLeft); err != nil {
			return nil, err
		}
	}
	if p.Exclude != "" {
		if m.exclude, err = compile(`\A(?:`+p.Exclude+`)\z`, regexp2.None); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustRegexpMatcher is like NewRegexpMatcher but panics on error.
func MustRegexpMatcher(p Patterns) *RegexpMatcher {
	m, err := NewRegexpMatcher(p)
	if err != nil {
		panic(err)
	}
	return m
}

func compile(expr string, opt regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, opt)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %s", ErrInvalidPattern, expr, err.Error())
	}
	return re, nil
}

// Patterns returns the source patterns.
func (m *RegexpMatcher) Patterns() Patterns {
	return m.patterns
}

// MatchesBefore implements Matcher.
func (m *RegexpMatcher) MatchesBefore(text []rune, pos int) bool {
	if m.context == nil {
		return true
	}
	if pos > len(text) {
		pos = len(text)
	}

	start := max(0, pos-contextWindow)
	for i := pos - 1; i >= start; i-- {
		if text[i] == '\n' {
			start = i
			break
		}
	}

	window := text[start:pos]
	if start == 0 && (pos == 0 || text[0] != '\n') {
		window = append(append(make([]rune, 0, pos+1), virtualNewline...), window...)
	}

	ok, err := m.context.MatchRunes(window)
	return err == nil && ok
}

// MatchesAt implements Matcher. When the identifier pattern matches but
// the spelling is excluded, ok is false and end reports the end of the
// rejected token so callers can step over it.
func (m *RegexpMatcher) MatchesAt(text []rune, pos int) (start, end int, ok bool) {
	if pos < 0 || pos >= len(text) {
		return pos, pos, false
	}
	match, err := m.at.FindRunesMatchStartingAt(text, pos)
	if err != nil || match == nil {
		return pos, pos, false
	}

	start, end = match.Index, match.Index+match.Length
	if g := match.GroupByNumber(1); g != nil && len(g.Captures) > 0 {
		start, end = g.Index, g.Index+g.Length
	}
	if end <= start {
		return pos, pos, false
	}

	if m.exclude != nil {
		excluded, err := m.exclude.MatchRunes(text[start:end])
		if err == nil && excluded {
			return start, end, false
		}
	}
	return start, end, true
}

// SearchForward implements Matcher.
func (m *RegexpMatcher) SearchForward(text []rune, pos, limit int) (int, bool) {
	if pos < 0 {
		pos = 0
	}
	limit = min(limit, len(text))
	if pos >= limit {
		return limit, false
	}
	match, err := m.search.FindRunesMatchStartingAt(text, pos)
	if err != nil || match == nil || match.Index >= limit {
		return limit, false
	}
	return match.Index, true
}

// NewRule builds a rule from patterns and a fixed tag list.
func NewRule(p Patterns, tags ...string) (*Rule, error) {
	m, err := NewRegexpMatcher(p)
	if err != nil {
		return nil, err
	}
	return &Rule{Matcher: m, Tags: StaticTags(NewTagSet(tags...))}, nil
}
