package highlight

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sync"

	chroma "github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
)

// Highlighter turns source code into HTML.
type Highlighter struct {
	// Style used for syntax highlighting of code.
	// Defaults to PlainStyle.
	Style *chroma.Style

	// UseClasses specifies whether the highlighter
	// uses inline 'style' attributes for highlighting,
	// or classes, assumign use of an appropriate style sheet.
	UseClasses bool

	once      sync.Once
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func (h *Highlighter) init() {
	h.once.Do(func() {
		h.style = h.Style
		if h.style == nil {
			h.style = PlainStyle
		}
		h.formatter = chromahtml.New(
			chromahtml.PreventSurroundingPre(true),
			chromahtml.WithClasses(h.UseClasses),
		)
	})
}

// WriteCSS writes the style classes for this highlighter to writer.
// If this highlighter is not using classes, WriteCSS is a no-op.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	h.init()

	if !h.UseClasses {
		return nil
	}

	return h.formatter.WriteCSS(w, h.style)
}

// Highlight renders src, written in the given language,
// into a <pre> block of HTML.
func (h *Highlighter) Highlight(lang, src string) string {
	h.init()

	var buff bytes.Buffer
	if h.UseClasses {
		fmt.Fprintf(&buff, "<pre class=%q>", chroma.StandardTypes[chroma.PreWrapper])
	} else {
		style := chromahtml.StyleEntryToCSS(h.style.Get(chroma.PreWrapper))
		fmt.Fprintf(&buff, "<pre style=%q>", style)
	}

	tokens, err := chroma.Tokenise(Lexer(lang), nil, src)
	if err == nil {
		err = h.formatter.Format(&buff, h.style, chroma.Literator(tokens...))
	}
	if err != nil {
		// Lexing failures are not fatal to a page.
		// Show the code as-is.
		buff.Reset()
		buff.WriteString("<pre>")
		template.HTMLEscape(&buff, []byte(src))
	}

	buff.WriteString("</pre>")
	return buff.String()
}
