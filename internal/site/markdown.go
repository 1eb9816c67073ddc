package site

import (
	"bytes"
	"fmt"
	"io"

	"braces.dev/errtrace"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/docmake/internal/highlight"
	"go.abhg.dev/docmake/internal/relative"
)

// Highlighter renders source code into HTML.
type Highlighter interface {
	Highlight(lang, src string) string
	WriteCSS(io.Writer) error
}

var _ Highlighter = (*highlight.Highlighter)(nil)

// newMarkdown builds the Markdown converter used for narrative pages
// and docstrings.
func newMarkdown(h Highlighter) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			// Pages and docstrings are written by the project's authors.
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				// Ahead of the default renderer at 1000.
				util.Prioritized(&codeBlockRenderer{h: h}, 200),
			),
		),
	)
}

// markdownPage renders Markdown for a single output page.
type markdownPage struct {
	md       goldmark.Markdown
	resolver *resolver

	// Path of the page being rendered, relative to the site root.
	Path string

	// Warnings found while rendering.
	Warnings []Warning
}

func (p *markdownPage) warnf(format string, args ...any) {
	p.Warnings = append(p.Warnings, Warning{
		Page: p.Path,
		Msg:  fmt.Sprintf(format, args...),
	})
}

// Render converts Markdown to HTML,
// resolving cross-references and links to other pages.
func (p *markdownPage) Render(src []byte) (string, error) {
	doc := p.md.Parser().Parse(text.NewReader(src))

	var unresolved []*ast.Link
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !p.rewriteLink(link) {
			unresolved = append(unresolved, link)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", errtrace.Wrap(err)
	}

	// Unresolved references render as their text.
	// This can't happen during the walk.
	for _, link := range unresolved {
		parent := link.Parent()
		for c := link.FirstChild(); c != nil; {
			next := c.NextSibling()
			parent.InsertBefore(parent, link, c)
			c = next
		}
		parent.RemoveChild(parent, link)
	}

	var buff bytes.Buffer
	if err := p.md.Renderer().Render(&buff, src, doc); err != nil {
		return "", errtrace.Wrap(err)
	}
	return buff.String(), nil
}

// rewriteLink points cross-references and page links
// at their output paths.
// It reports false if the link should be dropped.
func (p *markdownPage) rewriteLink(link *ast.Link) bool {
	dest := string(link.Destination)

	if name, ok := bytes.CutPrefix(link.Destination, []byte(XRefScheme)); ok {
		target, ok := p.resolver.Resolve(string(name))
		if !ok {
			p.warnf("unresolved reference %q", name)
			return false
		}
		link.Destination = []byte(relative.File(p.Path, target))
		return true
	}

	if target, isPage, ok := p.resolver.ResolvePage(dest); isPage {
		if !ok {
			p.warnf("link to unknown page %q", dest)
			return false
		}
		link.Destination = []byte(relative.File(p.Path, target))
	}
	return true
}

// codeBlockRenderer renders fenced code blocks with syntax highlighting.
type codeBlockRenderer struct {
	h Highlighter
}

var _ renderer.NodeRenderer = (*codeBlockRenderer)(nil)

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(
	w util.BufWriter, src []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(src))
	}

	var lang string
	if l := n.Language(src); l != nil {
		lang = string(l)
	}

	_, err := w.WriteString(r.h.Highlight(lang, code.String()))
	return ast.WalkSkipChildren, errtrace.Wrap(err)
}

