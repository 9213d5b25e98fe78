package buffer

import "github.com/google/uuid"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLanguage sets the buffer's language tag.
func WithLanguage(lang string) Option {
	return func(b *Buffer) {
		b.language = lang
	}
}

// WithID sets the buffer's identity instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(b *Buffer) {
		b.id = id
	}
}

// LanguageForPath guesses a language tag from a file name extension.
// Unknown extensions yield "".
func LanguageForPath(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] != '.' {
			continue
		}
		switch path[i+1:] {
		case "go":
			return "go"
		case "js", "mjs", "cjs", "jsx":
			return "javascript"
		case "ts", "tsx":
			return "typescript"
		case "py":
			return "python"
		case "rb":
			return "ruby"
		case "c", "h":
			return "c"
		case "lua":
			return "lua"
		}
		return ""
	}
	return ""
}
