// Package scan finds identifier spans in a decorated text source.
//
// The scanner walks a region of a Source under a lexrule.Rule. Positions
// whose decoration is not in the rule's tag set are skipped a whole
// decoration run at a time; inside eligible runs the rule's matcher finds
// candidates, so text is never stepped through rune by rune.
package scan

import "github.com/dshills/idhue/internal/lexrule"

// Source is the read side of a host text model.
type Source interface {
	// Runes returns the document text. The scanner does not modify it.
	Runes() []rune

	// TagAt returns the decoration tag at pos; "" is undecorated.
	TagAt(pos int) string

	// Classified reports whether pos was previously marked as part of an
	// identifier.
	Classified(pos int) bool

	// NextChange returns the first offset after pos where the tag or the
	// classified marker changes, or limit.
	NextChange(pos, limit int) int
}

// VisitFunc receives the bounds of each identifier found.
type VisitFunc func(start, end int)

// ContinueFunc is polled before every step; returning false aborts.
type ContinueFunc func() bool

// Result describes how a scan ended.
type Result int

const (
	// Completed means the scan reached its limit.
	Completed Result = iota
	// Aborted means shouldContinue asked the scan to stop.
	Aborted
	// NoRule means there was no rule to scan with; nothing was done.
	NoRule
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case NoRule:
		return "no-rule"
	default:
		return "unknown"
	}
}

// Scan visits the identifiers of src in [from, limit) recognized by rule.
//
// A nil rule returns NoRule without touching src. shouldContinue may be
// nil. The visit callback may mark visited spans in src; it must not
// change the text or the properties of text after the visited span.
func Scan(src Source, rule *lexrule.Rule, from, limit int, visit VisitFunc, shouldContinue ContinueFunc) Result {
	if rule == nil || rule.Matcher == nil {
		return NoRule
	}

	text := src.Runes()
	m := rule.Matcher
	tags := rule.TagSet()
	from = max(from, 0)
	limit = min(limit, len(text))

	var (
		runEnd   = from
		eligible bool
		next     = -1
	)

	for pos := from; pos < limit; {
		if shouldContinue != nil && !shouldContinue() {
			return Aborted
		}

		if pos >= runEnd {
			runEnd = src.NextChange(pos, limit)
			eligible = src.Classified(pos) || tags.Has(src.TagAt(pos))
		}
		if !eligible {
			pos = runEnd
			continue
		}

		start, end, ok := m.MatchesAt(text, pos)
		if ok {
			if m.MatchesBefore(text, pos) && visit != nil {
				visit(start, end)
			}
			pos = max(end, pos+1)
			continue
		}
		if end > pos {
			// Rejected token; resuming inside it would match a suffix.
			pos = end
			continue
		}

		if next <= pos {
			n, found := m.SearchForward(text, pos+1, limit)
			if !found {
				return Completed
			}
			next = n
		}
		pos = min(next, runEnd)
	}
	return Completed
}

// Span is a half-open identifier range.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the spelling of the span in text.
func (s Span) Text(text []rune) string {
	return string(text[s.Start:s.End])
}

// Collect runs Scan and returns the spans found, in order.
func Collect(src Source, rule *lexrule.Rule, from, limit int, shouldContinue ContinueFunc) ([]Span, Result) {
	var spans []Span
	res := Scan(src, rule, from, limit, func(start, end int) {
		spans = append(spans, Span{Start: start, End: end})
	}, shouldContinue)
	return spans, res
}
