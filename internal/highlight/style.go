package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// PlainStyle is the default style for signatures and code samples.
// Text stays black; comments and docstrings are faded,
// and keywords and decorators are set in bold.
var PlainStyle = chroma.MustNewStyle("plain", chroma.StyleEntries{
	chroma.Background:       "bg:#f6f8fa",
	chroma.PreWrapper:       "bg:#f6f8fa",
	chroma.Comment:          "#666666",
	chroma.LiteralStringDoc: "#666666",
	chroma.Keyword:          "bold",
	chroma.NameDecorator:    "bold #555555",
	chroma.GenericError:     "#a40000",
})

func init() {
	styles.Register(PlainStyle)
}

// StyleByName looks up a registered Chroma style.
// It returns PlainStyle if name is empty or unknown.
func StyleByName(name string) *chroma.Style {
	if s, ok := styles.Registry[name]; ok && len(name) > 0 {
		return s
	}
	return PlainStyle
}
