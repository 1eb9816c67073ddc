package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"github.com/yuin/goldmark"
	"go.abhg.dev/docmake/internal/apidoc"
	"go.abhg.dev/docmake/internal/errdefer"
	"go.abhg.dev/docmake/internal/highlight"
	"go.abhg.dev/docmake/internal/narrative"
	"go.abhg.dev/docmake/internal/pathtree"
	"go.abhg.dev/docmake/internal/pathx"
	"go.abhg.dev/docmake/internal/sliceutil"
)

// LinkcheckOutput is the report file written by linkcheck builds.
const LinkcheckOutput = "output.txt"

// Builder builds documentation sites.
type Builder struct {
	Log *log.Logger // required

	// Highlighter for code blocks and signatures.
	// Defaults to a class-based highlighter
	// using the style named in the site configuration.
	Highlighter Highlighter
}

// Request specifies a single build.
type Request struct {
	// SourceDir holds docs.yaml, narrative pages, and descriptor files.
	SourceDir string

	// OutDir is the directory the output is written to.
	// It's replaced entirely on success.
	OutDir string

	Mode Mode

	// Config is the site configuration.
	// If nil, it's loaded from SourceDir.
	Config *narrative.Config

	Options Options
}

// Build builds the site described by req.
//
// Configuration and pages are loaded and validated before any output is written.
// A *narrative.ConfigError is returned if they are invalid.
func (b *Builder) Build(ctx context.Context, req *Request) (_ *Artifact, err error) {
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if req.Mode == HelpMode {
		b.Log.Printf("Please use `docmake <mode>` where <mode> is one of")
		for _, m := range Modes {
			b.Log.Printf("  %-10v %v", m, m.Description())
		}
		return &Artifact{Mode: HelpMode}, nil
	}

	info := b.Log
	if req.Options.Quiet {
		info = log.New(io.Discard, "", 0)
	}

	cfg := req.Config
	if cfg == nil {
		cfg, err = narrative.LoadConfig(req.SourceDir)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	if len(req.Options.Overrides) > 0 {
		c := *cfg
		for _, kv := range req.Options.Overrides {
			if err := c.Set(kv.Key, kv.Value); err != nil {
				return nil, errtrace.Wrap(fmt.Errorf("-D %v: %w", kv.String(), err))
			}
		}
		cfg = &c
	}

	pages, err := narrative.LoadPages(req.SourceDir, cfg)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	descs, err := apidoc.Load(req.SourceDir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if len(descs) == 0 {
		info.Printf("No API descriptors in %v: the API reference will be empty.", req.SourceDir)
	}

	h := b.Highlighter
	if h == nil {
		h = &highlight.Highlighter{
			Style:      highlight.StyleByName(cfg.Style),
			UseClasses: true,
		}
	}

	g := newGenerator(req.Mode, cfg, pages, descs, h)
	files, err := g.Generate(ctx)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	for _, w := range g.warnings {
		b.Log.Printf("WARNING: %v", w)
	}

	art := Artifact{
		Dir:      req.OutDir,
		Mode:     req.Mode,
		Warnings: g.warnings,
	}

	if req.Mode == LinkcheckMode {
		var report bytes.Buffer
		for _, w := range g.warnings {
			fmt.Fprintln(&report, w)
		}
		if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
			return nil, errtrace.Wrap(err)
		}
		if err := os.WriteFile(filepath.Join(req.OutDir, LinkcheckOutput), report.Bytes(), 0o644); err != nil {
			return nil, errtrace.Wrap(err)
		}
		art.Pages = []string{LinkcheckOutput}
		info.Printf("Checked %d pages. Look for any errors in %v.",
			len(files), filepath.Join(req.OutDir, LinkcheckOutput))
		if len(g.warnings) > 0 {
			return &art, errtrace.Wrap(fmt.Errorf("%w: %d", ErrBrokenLinks, len(g.warnings)))
		}
		return &art, nil
	}

	if req.Options.Strict && len(g.warnings) > 0 {
		return nil, errtrace.Wrap(fmt.Errorf("%w: %d warnings", ErrWarningsAsErrors, len(g.warnings)))
	}

	if err := writeSite(req.OutDir, files, h); err != nil {
		return nil, errtrace.Wrap(err)
	}

	for name := range files {
		art.Pages = append(art.Pages, name)
	}
	art.Pages = append(art.Pages, StaticDir+"/main.css")
	sort.Strings(art.Pages)

	info.Printf("Build finished. The HTML pages are in %v.", req.OutDir)
	return &art, nil
}

// writeSite writes files into a temporary sibling of outDir
// and swaps it into place.
func writeSite(outDir string, files map[string][]byte, h Highlighter) (err error) {
	outDir = filepath.Clean(outDir)
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(outDir)+"-*")
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.RemoveAllOnError(&err, tmp)
	if err := os.Chmod(tmp, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	for name, body := range files {
		path := filepath.Join(tmp, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errtrace.Wrap(err)
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return errtrace.Wrap(err)
		}
	}
	if err := writeStatic(tmp, h); err != nil {
		return errtrace.Wrap(fmt.Errorf("write static files: %w", err))
	}

	return errtrace.Wrap(pathx.ReplaceDir(tmp, outDir))
}

// generator renders all pages of a site in memory.
type generator struct {
	mode     Mode
	site     *SiteInfo
	pages    []*narrative.Page
	descs    []*apidoc.Descriptor
	byName   map[string]*apidoc.Descriptor
	nav      []NavItem
	resolver *resolver
	h        Highlighter

	warnings []Warning
}

func newGenerator(
	mode Mode,
	cfg *narrative.Config,
	pages []*narrative.Page,
	descs []*apidoc.Descriptor,
	h Highlighter,
) *generator {
	names := make([]string, len(pages))
	nav := make([]NavItem, 0, len(pages)+1)
	for i, p := range pages {
		names[i] = p.Name
		nav = append(nav, NavItem{Title: p.Title, Path: mode.pagePath(p.Name)})
	}
	nav = append(nav, NavItem{Title: "API Reference", Path: apiIndexPath})

	byName := make(map[string]*apidoc.Descriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}

	return &generator{
		mode: mode,
		site: &SiteInfo{
			Project:   cfg.Project,
			Release:   cfg.Release,
			Author:    cfg.Author,
			Copyright: cfg.Copyright,
		},
		pages:    pages,
		descs:    descs,
		byName:   byName,
		nav:      nav,
		resolver: newResolver(mode, descs, names),
		h:        h,
	}
}

// Generate renders every page, keyed by output path.
// Two pages that map to the same output path are an error.
func (g *generator) Generate(ctx context.Context) (map[string][]byte, error) {
	files := make(map[string][]byte, len(g.pages)+len(g.descs)+1)
	owners := make(map[string]string, len(g.pages)+len(g.descs)+1) // output path -> page
	claim := func(out, owner string) error {
		if prev, ok := owners[out]; ok {
			return errtrace.Wrap(fmt.Errorf("%v and %v both render to %v", prev, owner, out))
		}
		owners[out] = owner
		return nil
	}

	md := newMarkdown(g.h)
	if err := claim(apiIndexPath, "API index"); err != nil {
		return nil, errtrace.Wrap(err)
	}

	for _, p := range g.pages {
		if err := ctx.Err(); err != nil {
			return nil, errtrace.Wrap(err)
		}
		out := g.mode.pagePath(p.Name)
		if err := claim(out, "page "+p.Name); err != nil {
			return nil, errtrace.Wrap(err)
		}
		body, err := g.renderNarrative(md, out, p)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("page %v: %w", p.Name, err))
		}
		files[out] = body
	}

	for _, d := range g.descs {
		if err := ctx.Err(); err != nil {
			return nil, errtrace.Wrap(err)
		}
		out := g.mode.referencePath(d.Name)
		if err := claim(out, "reference "+d.Name); err != nil {
			return nil, errtrace.Wrap(err)
		}
		body, err := g.renderReference(md, out, d)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("reference %v: %w", d.Name, err))
		}
		files[out] = body
	}

	body, err := g.renderAPIIndex(md)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("API index: %w", err))
	}
	files[apiIndexPath] = body

	return files, nil
}

func (g *generator) newRender(md *markdownPage, path string) *render {
	return &render{
		Path:        path,
		Highlighter: g.h,
		Markdown:    md,
	}
}

func (g *generator) pageInfo(path, title, desc string) *pageInfo {
	nav := make([]NavItem, len(g.nav))
	copy(nav, g.nav)
	for i := range nav {
		nav[i].Current = nav[i].Path == path
	}
	return &pageInfo{
		Site:        g.site,
		Title:       title,
		Description: desc,
		Nav:         nav,
	}
}

func (g *generator) renderNarrative(md goldmark.Markdown, path string, p *narrative.Page) ([]byte, error) {
	mp := &markdownPage{md: md, resolver: g.resolver, Path: path}
	body, err := mp.Render(p.Body)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	var buff bytes.Buffer
	err = executeTemplate(_pageTmpl, &buff, g.newRender(mp, path), &narrativeData{
		pageInfo: g.pageInfo(path, p.Title, p.Description),
		Body:     template.HTML(body),
	})
	g.warnings = append(g.warnings, mp.Warnings...)
	return buff.Bytes(), errtrace.Wrap(err)
}

func (g *generator) renderReference(md goldmark.Markdown, path string, d *apidoc.Descriptor) ([]byte, error) {
	mp := &markdownPage{md: md, resolver: g.resolver, Path: path}

	info := g.pageInfo(path, d.Name, d.Synopsis())
	parts := strings.Split(d.Name, ".")
	for i := range parts {
		prefix := strings.Join(parts[:i+1], ".")
		crumb := Breadcrumb{Text: parts[i]}
		if _, ok := g.byName[prefix]; ok && i < len(parts)-1 {
			crumb.Path = g.mode.referencePath(prefix)
		}
		info.Breadcrumbs = append(info.Breadcrumbs, crumb)
	}

	data := referenceData{
		pageInfo:   info,
		Descriptor: d,
		Submodules: g.refLinks(d.Submodules),
		Classes:    g.refLinks(d.Classes),
	}

	var buff bytes.Buffer
	err := executeTemplate(_referenceTmpl, &buff, g.newRender(mp, path), &data)
	g.warnings = append(g.warnings, mp.Warnings...)
	return buff.Bytes(), errtrace.Wrap(err)
}

func (g *generator) refLinks(names []string) []refLink {
	return sliceutil.Transform(names, func(name string) refLink {
		link := refLink{Name: name}
		if d, ok := g.byName[name]; ok {
			link.Path = g.mode.referencePath(name)
			link.Synopsis = d.Synopsis()
		}
		return link
	})
}

func (g *generator) renderAPIIndex(md goldmark.Markdown) ([]byte, error) {
	var tree pathtree.Root[*apidoc.Descriptor]
	for _, d := range g.descs {
		tree.Set(d.Name, d)
	}

	mp := &markdownPage{md: md, resolver: g.resolver, Path: apiIndexPath}
	data := apiIndexData{
		pageInfo: g.pageInfo(apiIndexPath, "API Reference", ""),
		Entries:  g.indexEntries(tree.Snapshot()),
	}

	var buff bytes.Buffer
	err := executeTemplate(_apiIndexTmpl, &buff, g.newRender(mp, apiIndexPath), &data)
	return buff.Bytes(), errtrace.Wrap(err)
}

func (g *generator) indexEntries(snaps []pathtree.Snapshot[*apidoc.Descriptor]) []indexEntry {
	if len(snaps) == 0 {
		return nil
	}
	entries := make([]indexEntry, len(snaps))
	for i, snap := range snaps {
		entries[i] = indexEntry{
			Name:     snap.Name,
			Children: g.indexEntries(snap.Children),
		}
		if snap.Value != nil {
			d := *snap.Value
			entries[i].Path = g.mode.referencePath(d.Name)
			entries[i].Synopsis = d.Synopsis()
		}
	}
	return entries
}
