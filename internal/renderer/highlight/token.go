// Package highlight decorates buffers with base syntax tags.
//
// A Highlighter tokenizes one line at a time and carries a LexerState
// across lines for block comments and multi-line strings. The Decorator
// writes the resulting tags into a buffer, where the identifier scanner
// reads them to decide which text may hold identifiers. Plain
// identifiers are left undecorated.
package highlight

// TokenType represents the syntactic class of a token.
type TokenType uint8

// Token types.
const (
	TokenNone TokenType = iota
	TokenComment
	TokenString
	TokenNumber
	TokenKeyword
	TokenConstant
	TokenTypeName
	TokenBuiltin
	TokenMeta

	tokenTypeCount
)

var tokenTags = [tokenTypeCount]string{
	TokenNone:     "",
	TokenComment:  "comment",
	TokenString:   "string",
	TokenNumber:   "number",
	TokenKeyword:  "keyword",
	TokenConstant: "constant",
	TokenTypeName: "type",
	TokenBuiltin:  "builtin",
	TokenMeta:     "meta",
}

// Tag returns the decoration tag written for tokens of type t.
// TokenNone maps to "", the undecorated tag.
func (t TokenType) Tag() string {
	if t < tokenTypeCount {
		return tokenTags[t]
	}
	return ""
}

// String returns the tag, or "none" for TokenNone.
func (t TokenType) String() string {
	if t == TokenNone {
		return "none"
	}
	if t >= tokenTypeCount {
		return "unknown"
	}
	return t.Tag()
}

// TokenTypeFromTag returns the token type written as tag.
func TokenTypeFromTag(tag string) TokenType {
	for i, s := range tokenTags {
		if s == tag {
			return TokenType(i)
		}
	}
	return TokenNone
}

// Tags returns every non-empty decoration tag, in token type order.
func Tags() []string {
	out := make([]string, 0, len(tokenTags)-1)
	for _, s := range tokenTags[1:] {
		out = append(out, s)
	}
	return out
}

// Token is a highlighted range of a line, in rune columns.
type Token struct {
	Type  TokenType
	Start int
	End   int
}

// Len returns the token length.
func (t Token) Len() int {
	return t.End - t.Start
}

// LexerState is carried from one line to the next.
type LexerState uint8

// Lexer states.
const (
	LexerStateNormal LexerState = iota
	LexerStateBlockComment
	LexerStateStringBacktick
	LexerStateStringTripleDouble
	LexerStateStringTripleSingle
)
