package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/idhue/internal/engine/buffer"
	"github.com/dshills/idhue/internal/renderer/core"
)

func TestTokenTags(t *testing.T) {
	assert.Equal(t, "", TokenNone.Tag())
	assert.Equal(t, "none", TokenNone.String())
	assert.Equal(t, "comment", TokenComment.Tag())
	assert.Equal(t, "unknown", TokenType(200).String())
	assert.Equal(t, TokenKeyword, TokenTypeFromTag("keyword"))
	assert.Equal(t, TokenNone, TokenTypeFromTag("bogus"))
	assert.NotContains(t, Tags(), "")
	assert.Contains(t, Tags(), "string")
}

func TestHighlightLine(t *testing.T) {
	h := GoHighlighter()

	tests := []struct {
		name  string
		line  string
		want  []Token
		state LexerState
	}{
		{
			name: "keywords and identifiers",
			line: "func main() {",
			want: []Token{{TokenKeyword, 0, 4}},
		},
		{
			name: "string and comment",
			line: `x := "a // b" // note`,
			want: []Token{{TokenString, 5, 13}, {TokenComment, 14, 21}},
		},
		{
			name: "number",
			line: "n = 42",
			want: []Token{{TokenNumber, 4, 6}},
		},
		{
			name:  "open block comment",
			line:  "a /* start",
			want:  []Token{{TokenComment, 2, 10}},
			state: LexerStateBlockComment,
		},
		{
			name: "closed block comment",
			line: "/* c */ nil",
			want: []Token{{TokenComment, 0, 7}, {TokenConstant, 8, 11}},
		},
		{
			name: "non-ascii identifiers",
			line: "größe := len(x)",
			want: []Token{{TokenBuiltin, 9, 12}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, state := h.HighlightLine([]rune(tt.line), LexerStateNormal)
			assert.Equal(t, tt.want, tokens)
			assert.Equal(t, tt.state, state)
		})
	}
}

func TestHighlightLineContinuation(t *testing.T) {
	h := GoHighlighter()

	tokens, state := h.HighlightLine([]rune("still comment"), LexerStateBlockComment)
	assert.Equal(t, []Token{{TokenComment, 0, 13}}, tokens)
	assert.Equal(t, LexerStateBlockComment, state)

	tokens, state = h.HighlightLine([]rune("end */ return"), LexerStateBlockComment)
	assert.Equal(t, []Token{{TokenComment, 0, 6}, {TokenKeyword, 7, 13}}, tokens)
	assert.Equal(t, LexerStateNormal, state)

	tokens, state = h.HighlightLine(nil, LexerStateBlockComment)
	assert.Empty(t, tokens)
	assert.Equal(t, LexerStateBlockComment, state)
}

func TestPythonTripleQuotes(t *testing.T) {
	h := PythonHighlighter()

	tokens, state := h.HighlightLine([]rune(`doc = """text`), LexerStateNormal)
	assert.Equal(t, []Token{{TokenString, 6, 13}}, tokens)
	assert.Equal(t, LexerStateStringTripleDouble, state)

	tokens, state = h.HighlightLine([]rune(`more""" + 'x'`), state)
	assert.Equal(t, []Token{{TokenString, 0, 7}, {TokenString, 10, 13}}, tokens)
	assert.Equal(t, LexerStateNormal, state)
}

func TestDecorate(t *testing.T) {
	b := buffer.NewFromString("// head\nvar x = \"s\"\n/* a\nb */ y")
	d := NewDecorator(GoHighlighter())
	d.Decorate(b)

	assert.Equal(t, "comment", b.TagAt(0))
	assert.Equal(t, "keyword", b.TagAt(8))
	assert.Equal(t, "", b.TagAt(12))
	assert.Equal(t, "string", b.TagAt(16))
	assert.Equal(t, "comment", b.TagAt(22))
	assert.Equal(t, "comment", b.TagAt(25))
	assert.Equal(t, "", b.TagAt(30))
	assert.Equal(t, LexerStateBlockComment, d.stateAt(2))
	assert.Equal(t, LexerStateNormal, d.stateAt(3))
}

func TestDecoratorUpdate(t *testing.T) {
	b := buffer.NewFromString("a\nb\nc\nd")
	d := NewDecorator(GoHighlighter())
	d.Decorate(b)

	var last buffer.Edit
	b.OnEdit(func(e buffer.Edit) { last = e })

	_, err := b.Insert(2, "/* ")
	require.NoError(t, err)
	d.Update(b, last)

	text := b.Runes()
	for i, r := range text {
		if i >= 2 && r != '\n' {
			assert.Equal(t, "comment", b.TagAt(i), "offset %d (%q)", i, r)
		}
	}
	assert.Equal(t, LexerStateBlockComment, d.stateAt(3))

	_, err = b.Insert(b.Len(), " */ go")
	require.NoError(t, err)
	d.Update(b, last)

	assert.Equal(t, "keyword", b.TagAt(b.Len()-1))
	assert.Equal(t, LexerStateNormal, d.stateAt(3))

	require.NoError(t, b.Delete(2, 5))
	d.Update(b, last)
	assert.Equal(t, "", b.TagAt(2))
	assert.Equal(t, "", b.TagAt(4))
}

func TestDecoratorUpdateRange(t *testing.T) {
	b := buffer.NewFromString("a\nb\nc\nd")
	d := NewDecorator(GoHighlighter())
	d.Decorate(b)

	var last buffer.Edit
	b.OnEdit(func(e buffer.Edit) { last = e })

	_, err := b.Insert(b.Len(), "x")
	require.NoError(t, err)
	first, end := d.Update(b, last)
	assert.Equal(t, 3, first)
	assert.Equal(t, 3, end)

	_, err = b.Insert(0, "/*")
	require.NoError(t, err)
	first, end = d.Update(b, last)
	assert.Equal(t, 0, first)
	assert.Equal(t, 3, end, "an opened comment re-tags to the end")

	_, err = b.Insert(2, "*/")
	require.NoError(t, err)
	first, end = d.Update(b, last)
	assert.Equal(t, 0, first)
	assert.Equal(t, 3, end, "closing it re-tags the same lines back")
	assert.Equal(t, "", b.TagAt(b.Len()-1))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"c", "go", "javascript", "python", "typescript"}, r.Languages())

	h, ok := r.Get("typescript")
	require.True(t, ok)
	tokens, _ := h.HighlightLine([]rune("let n: number"), LexerStateNormal)
	assert.Equal(t, []Token{{TokenKeyword, 0, 3}, {TokenTypeName, 7, 13}}, tokens)

	_, ok = r.Get("cobol")
	assert.False(t, ok)
}

func TestTheme(t *testing.T) {
	themes := NewThemeRegistry()
	assert.Equal(t, []string{"default-dark", "light", "monokai"}, themes.Names())

	dark, ok := themes.Get("default-dark")
	require.True(t, ok)
	assert.True(t, dark.StyleForTag("comment").Attributes.Has(core.AttrItalic))
	assert.Equal(t, dark.Base(), dark.StyleForTag(""))
	assert.Equal(t, dark.Foreground, dark.Base().Foreground)
}
