// Package lexrule defines the per-language lexical rules that tell the
// scanner which tokens are identifiers.
//
// A Rule pairs a Matcher, which answers "may an identifier start here?",
// with a TagSource naming the decoration tags that mark a position as
// identifier-bearing. The package ships no rules of its own; hosts
// register them in a Table keyed by language tag.
package lexrule

import (
	"sort"
	"sync"
)

// Undecorated is the tag value of text carrying no decoration. Include it
// in a rule's tag set to let the scanner consider undecorated text.
const Undecorated = ""

// Matcher recognizes identifiers in a rune slice.
type Matcher interface {
	// MatchesBefore reports whether the text preceding pos is a legal
	// context for an identifier (for example, not a member access).
	MatchesBefore(text []rune, pos int) bool

	// MatchesAt reports whether an identifier begins at pos and returns
	// the bounds of the identifier text.
	MatchesAt(text []rune, pos int) (start, end int, ok bool)

	// SearchForward returns the first position in [pos, limit) at which
	// the identifier pattern may match.
	SearchForward(text []rune, pos, limit int) (int, bool)
}

// TagSet is a set of decoration tags.
type TagSet map[string]struct{}

// NewTagSet builds a set from tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TagSource yields the tag set of a rule. It is consulted once per scan.
type TagSource interface {
	Tags() TagSet
}

// StaticTags is a fixed tag set.
type StaticTags TagSet

// Tags implements TagSource.
func (s StaticTags) Tags() TagSet {
	return TagSet(s)
}

// TagFunc computes the tag set on demand, for hosts whose decoration
// names depend on runtime state.
type TagFunc func() TagSet

// Tags implements TagSource.
func (f TagFunc) Tags() TagSet {
	if f == nil {
		return nil
	}
	return f()
}

// Rule is the lexical rule of one language.
type Rule struct {
	Matcher Matcher
	Tags    TagSource
}

// TagSet returns the rule's current tag set.
func (r *Rule) TagSet() TagSet {
	if r == nil || r.Tags == nil {
		return nil
	}
	return r.Tags.Tags()
}

// Table maps language tags to rules.
type Table struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{rules: make(map[string]*Rule)}
}

// Register adds or replaces the rule for lang.
func (t *Table) Register(lang string, rule *Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[lang] = rule
}

// Unregister removes the rule for lang.
func (t *Table) Unregister(lang string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rules, lang)
}

// Lookup returns the rule for lang, or nil if none is registered.
func (t *Table) Lookup(lang string) *Rule {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rules[lang]
}

// Languages returns the registered language tags in lexical order.
func (t *Table) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.rules))
	for lang := range t.rules {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
