package highlight

import (
	"unicode"

	"github.com/dlclark/regexp2"
)

// Highlighter tokenizes source text line by line.
type Highlighter interface {
	// HighlightLine tokenizes line given the state left by the previous
	// line and returns the tokens, sorted and non-overlapping, with the
	// state at the end of the line.
	HighlightLine(line []rune, prev LexerState) ([]Token, LexerState)

	// Language returns the language tag this highlighter handles.
	Language() string
}

type rule struct {
	re        *regexp2.Regexp
	tokenType TokenType
}

type multiLine struct {
	start     *regexp2.Regexp
	end       *regexp2.Regexp
	tokenType TokenType
	state     LexerState
}

// SimpleHighlighter is a regex and keyword based highlighter.
type SimpleHighlighter struct {
	language  string
	rules     []rule
	multiLine []multiLine
	keywords  map[string]TokenType
}

// NewSimpleHighlighter creates an empty highlighter for language.
func NewSimpleHighlighter(language string) *SimpleHighlighter {
	return &SimpleHighlighter{
		language: language,
		keywords: make(map[string]TokenType),
	}
}

// Language implements Highlighter.
func (h *SimpleHighlighter) Language() string {
	return h.language
}

// AddRule adds a single-line pattern. Earlier rules win ties.
func (h *SimpleHighlighter) AddRule(pattern string, tokenType TokenType) *SimpleHighlighter {
	h.rules = append(h.rules, rule{
		re:        regexp2.MustCompile(pattern, regexp2.None),
		tokenType: tokenType,
	})
	return h
}

// AddKeywords assigns tokenType to the given words.
func (h *SimpleHighlighter) AddKeywords(tokenType TokenType, words ...string) *SimpleHighlighter {
	for _, w := range words {
		h.keywords[w] = tokenType
	}
	return h
}

// AddMultiLine adds a construct delimited by literal start and end
// strings that may span lines.
func (h *SimpleHighlighter) AddMultiLine(start, end string, tokenType TokenType, state LexerState) *SimpleHighlighter {
	h.multiLine = append(h.multiLine, multiLine{
		start:     regexp2.MustCompile(regexp2.Escape(start), regexp2.None),
		end:       regexp2.MustCompile(regexp2.Escape(end), regexp2.None),
		tokenType: tokenType,
		state:     state,
	})
	return h
}

// HighlightLine implements Highlighter.
func (h *SimpleHighlighter) HighlightLine(line []rune, prev LexerState) ([]Token, LexerState) {
	var tokens []Token
	pos := 0

	if prev != LexerStateNormal {
		ml, ok := h.multiLineFor(prev)
		if !ok {
			prev = LexerStateNormal
		} else {
			end, closed := findEnd(ml.end, line, 0)
			if !closed {
				if len(line) > 0 {
					tokens = append(tokens, Token{Type: ml.tokenType, Start: 0, End: len(line)})
				}
				return tokens, prev
			}
			if end > 0 {
				tokens = append(tokens, Token{Type: ml.tokenType, Start: 0, End: end})
			}
			pos = end
		}
	}

	for pos < len(line) {
		start, end, tt, state := h.nextMatch(line, pos)
		if start < 0 {
			tokens = h.appendWords(tokens, line, pos, len(line))
			break
		}
		tokens = h.appendWords(tokens, line, pos, start)
		tokens = append(tokens, Token{Type: tt, Start: start, End: end})
		if state != LexerStateNormal {
			return tokens, state
		}
		pos = max(end, start+1)
	}
	return tokens, LexerStateNormal
}

// nextMatch finds the leftmost construct at or after pos. A multi-line
// construct left open returns its continuation state.
func (h *SimpleHighlighter) nextMatch(line []rune, pos int) (start, end int, tt TokenType, state LexerState) {
	start = -1
	for _, ml := range h.multiLine {
		m, err := ml.start.FindRunesMatchStartingAt(line, pos)
		if err != nil || m == nil || (start >= 0 && m.Index >= start) {
			continue
		}
		start, tt = m.Index, ml.tokenType
		if e, closed := findEnd(ml.end, line, m.Index+m.Length); closed {
			end, state = e, LexerStateNormal
		} else {
			end, state = len(line), ml.state
		}
	}
	for _, r := range h.rules {
		m, err := r.re.FindRunesMatchStartingAt(line, pos)
		if err != nil || m == nil || m.Length == 0 || (start >= 0 && m.Index >= start) {
			continue
		}
		start, end, tt, state = m.Index, m.Index+m.Length, r.tokenType, LexerStateNormal
	}
	return start, end, tt, state
}

func findEnd(re *regexp2.Regexp, line []rune, from int) (int, bool) {
	m, err := re.FindRunesMatchStartingAt(line, from)
	if err != nil || m == nil {
		return len(line), false
	}
	return m.Index + m.Length, true
}

func (h *SimpleHighlighter) multiLineFor(state LexerState) (multiLine, bool) {
	for _, ml := range h.multiLine {
		if ml.state == state {
			return ml, true
		}
	}
	return multiLine{}, false
}

// appendWords adds keyword tokens found in line[from:to].
func (h *SimpleHighlighter) appendWords(tokens []Token, line []rune, from, to int) []Token {
	for i := from; i < to; {
		if !isWordStart(line[i]) {
			i++
			continue
		}
		j := i + 1
		for j < to && isWordPart(line[j]) {
			j++
		}
		if tt, ok := h.keywords[string(line[i:j])]; ok {
			tokens = append(tokens, Token{Type: tt, Start: i, End: j})
		}
		i = j
	}
	return tokens
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isWordPart(r rune) bool {
	return isWordStart(r) || unicode.IsDigit(r)
}

// GoHighlighter returns a highlighter for Go.
func GoHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("go")
	h.AddMultiLine("/*", "*/", TokenComment, LexerStateBlockComment)
	h.AddMultiLine("`", "`", TokenString, LexerStateStringBacktick)

	h.AddRule(`//.*$`, TokenComment)
	h.AddRule(`"(?:[^"\\]|\\.)*"`, TokenString)
	h.AddRule(`'(?:[^'\\]|\\.)+'`, TokenString)
	h.AddRule(`\b(?:0[xXoObB][0-9a-fA-F_]+|\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?)\b`, TokenNumber)

	h.AddKeywords(TokenKeyword,
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select",
		"struct", "switch", "type", "var")
	h.AddKeywords(TokenConstant, "true", "false", "nil", "iota")
	h.AddKeywords(TokenTypeName,
		"bool", "byte", "complex64", "complex128", "error", "float32",
		"float64", "int", "int8", "int16", "int32", "int64", "rune",
		"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"any", "comparable")
	h.AddKeywords(TokenBuiltin,
		"append", "cap", "clear", "close", "complex", "copy", "delete",
		"imag", "len", "make", "max", "min", "new", "panic", "print",
		"println", "real", "recover")
	return h
}

// JavaScriptHighlighter returns a highlighter for JavaScript.
func JavaScriptHighlighter() *SimpleHighlighter {
	return jsFamily("javascript")
}

// TypeScriptHighlighter returns a highlighter for TypeScript.
func TypeScriptHighlighter() *SimpleHighlighter {
	h := jsFamily("typescript")
	h.AddKeywords(TokenKeyword,
		"type", "interface", "enum", "namespace", "declare", "implements",
		"public", "private", "protected", "readonly", "abstract")
	h.AddKeywords(TokenTypeName,
		"string", "number", "boolean", "unknown", "never", "void", "any")
	return h
}

func jsFamily(lang string) *SimpleHighlighter {
	h := NewSimpleHighlighter(lang)
	h.AddMultiLine("/*", "*/", TokenComment, LexerStateBlockComment)
	h.AddMultiLine("`", "`", TokenString, LexerStateStringBacktick)

	h.AddRule(`//.*$`, TokenComment)
	h.AddRule(`"(?:[^"\\]|\\.)*"`, TokenString)
	h.AddRule(`'(?:[^'\\]|\\.)*'`, TokenString)
	h.AddRule(`\b(?:0[xXoObB][0-9a-fA-F_]+|\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?n?)\b`, TokenNumber)
	h.AddRule(`@[A-Za-z_$][\w$]*`, TokenMeta)

	h.AddKeywords(TokenKeyword,
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "debugger", "default", "delete", "do", "else", "export",
		"extends", "finally", "for", "from", "function", "if", "import",
		"in", "instanceof", "let", "new", "of", "return", "static", "super",
		"switch", "this", "throw", "try", "typeof", "var", "void", "while",
		"with", "yield")
	h.AddKeywords(TokenConstant, "true", "false", "null", "undefined", "NaN", "Infinity")
	return h
}

// PythonHighlighter returns a highlighter for Python.
func PythonHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("python")
	h.AddMultiLine(`"""`, `"""`, TokenString, LexerStateStringTripleDouble)
	h.AddMultiLine(`'''`, `'''`, TokenString, LexerStateStringTripleSingle)

	h.AddRule(`#.*$`, TokenComment)
	h.AddRule(`[rbfuRBFU]{0,2}"(?:[^"\\]|\\.)*"`, TokenString)
	h.AddRule(`[rbfuRBFU]{0,2}'(?:[^'\\]|\\.)*'`, TokenString)
	h.AddRule(`\b(?:0[xXoObB][0-9a-fA-F_]+|\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?j?)\b`, TokenNumber)
	h.AddRule(`@[A-Za-z_][\w.]*`, TokenMeta)

	h.AddKeywords(TokenKeyword,
		"and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally",
		"for", "from", "global", "if", "import", "in", "is", "lambda",
		"match", "case", "nonlocal", "not", "or", "pass", "raise",
		"return", "try", "while", "with", "yield")
	h.AddKeywords(TokenConstant, "True", "False", "None")
	h.AddKeywords(TokenBuiltin,
		"abs", "all", "any", "dict", "enumerate", "filter", "float",
		"int", "isinstance", "len", "list", "map", "max", "min", "open",
		"print", "range", "repr", "set", "sorted", "str", "sum", "super",
		"tuple", "type", "zip")
	return h
}

// CHighlighter returns a highlighter for C.
func CHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("c")
	h.AddMultiLine("/*", "*/", TokenComment, LexerStateBlockComment)

	h.AddRule(`//.*$`, TokenComment)
	h.AddRule(`^\s*#\s*\w+`, TokenMeta)
	h.AddRule(`"(?:[^"\\]|\\.)*"`, TokenString)
	h.AddRule(`'(?:[^'\\]|\\.)+'`, TokenString)
	h.AddRule(`\b(?:0[xX][0-9a-fA-F]+|\d+\.?\d*(?:[eE][+-]?\d+)?)[uUlLfF]*\b`, TokenNumber)

	h.AddKeywords(TokenKeyword,
		"auto", "break", "case", "const", "continue", "default", "do",
		"else", "enum", "extern", "for", "goto", "if", "inline", "register",
		"restrict", "return", "sizeof", "static", "struct", "switch",
		"typedef", "union", "volatile", "while")
	h.AddKeywords(TokenTypeName,
		"char", "double", "float", "int", "long", "short", "signed",
		"unsigned", "void", "size_t", "bool")
	h.AddKeywords(TokenConstant, "NULL", "true", "false")
	return h
}
