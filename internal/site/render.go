package site

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/apidoc"
	"go.abhg.dev/docmake/internal/relative"
)

// StaticDir is the directory of static assets in the output.
const StaticDir = "_static"

var (
	//go:embed tmpl/*.html
	_tmplFS embed.FS

	//go:embed static/*
	_staticFS embed.FS

	// Function references are unusable at parse time,
	// and get replaced after a Clone at render time.
	// This way, template validity is still verified at init.
	_pageTmpl      = parseTemplate("page.html")
	_referenceTmpl = parseTemplate("reference.html")
	_apiIndexTmpl  = parseTemplate("apiindex.html")
)

func parseTemplate(name string) *template.Template {
	return template.Must(
		template.New(name).
			Funcs((*render)(nil).FuncMap()).
			ParseFS(_tmplFS, "tmpl/"+name, "tmpl/layout.html"),
	)
}

// SiteInfo is project metadata shown on every page.
type SiteInfo struct {
	Project   string
	Release   string
	Author    string
	Copyright string
}

// NavItem is an entry in the navigation bar.
type NavItem struct {
	Title string

	// Path to the page from the root of the site.
	Path string

	// Current is set for the page being rendered.
	Current bool
}

// Breadcrumb holds information about parents of a page
// so that we can leave a trail up for navigation.
type Breadcrumb struct {
	// Text for the crumb.
	Text string

	// Path to the crumb from the root of the site.
	Path string
}

// pageInfo holds information shared by all kinds of pages.
type pageInfo struct {
	Site        *SiteInfo
	Title       string
	Description string
	Nav         []NavItem
	Breadcrumbs []Breadcrumb
}

type narrativeData struct {
	*pageInfo

	Body template.HTML
}

// refLink is a link to another reference page.
type refLink struct {
	Name     string
	Path     string
	Synopsis string
}

type referenceData struct {
	*pageInfo

	Descriptor *apidoc.Descriptor
	Submodules []refLink
	Classes    []refLink
}

// indexEntry is a node in the API index tree.
// Path is empty for namespaces without their own page.
type indexEntry struct {
	Name     string
	Path     string
	Synopsis string
	Children []indexEntry
}

type apiIndexData struct {
	*pageInfo

	Entries []indexEntry
}

// render holds per-page state for template functions.
type render struct {
	// Path of the page being rendered, relative to the site root.
	Path string

	Highlighter Highlighter
	Markdown    *markdownPage
}

func (r *render) FuncMap() template.FuncMap {
	return template.FuncMap{
		"link":      r.link,
		"static":    r.static,
		"highlight": r.highlight,
		"doc":       r.doc,
	}
}

func (r *render) link(dst string) string {
	return relative.File(r.Path, dst)
}

func (r *render) static(p string) string {
	return r.link(path.Join(StaticDir, p))
}

func (r *render) highlight(lang, src string) template.HTML {
	return template.HTML(r.Highlighter.Highlight(lang, src))
}

func (r *render) doc(src string) (template.HTML, error) {
	out, err := r.Markdown.Render([]byte(src))
	return template.HTML(out), errtrace.Wrap(err)
}

func executeTemplate(tmpl *template.Template, w io.Writer, r *render, data any) error {
	return errtrace.Wrap(template.Must(tmpl.Clone()).
		Funcs(r.FuncMap()).
		ExecuteTemplate(w, "Page", data))
}

// writeStatic dumps the contents of static/ into dir/_static,
// with the highlighter's style sheet appended to main.css.
func writeStatic(dir string, h Highlighter) error {
	dir = filepath.Join(dir, StaticDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	static, err := fs.Sub(_staticFS, "static")
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		bs, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}

		if path == "main.css" {
			buff := bytes.NewBuffer(bs)
			buff.WriteString("\n")
			if err := h.WriteCSS(buff); err != nil {
				return err
			}
			bs = buff.Bytes()
		}

		return os.WriteFile(filepath.Join(dir, path), bs, 0o644)
	}))
}
