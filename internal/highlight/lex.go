package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// PythonLexer recognizes Python source and signatures.
var PythonLexer = chroma.Coalesce(lexers.Get("python"))

// Lexer returns a lexer for the given language name, alias, or file extension.
// It returns a plain text lexer if the language is unknown.
func Lexer(lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "", "text", "plain":
		return lexers.Fallback
	case "python", "py", "python3":
		return PythonLexer
	}

	l := lexers.Get(lang)
	if l == nil {
		return lexers.Fallback
	}
	return chroma.Coalesce(l)
}
