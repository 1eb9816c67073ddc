package site

import (
	"strings"

	"go.abhg.dev/docmake/internal/apidoc"
	"go.abhg.dev/docmake/internal/pathtree"
)

// XRefScheme is the link destination prefix for API cross-references:
//
//	[PhotonicLantern](api:rsoft_cad.lantern.PhotonicLantern)
const XRefScheme = "api:"

// resolver resolves qualified Python names to reference pages.
type resolver struct {
	mode      Mode
	pages     pathtree.Root[*apidoc.Descriptor]
	pageNames map[string]struct{} // narrative pages
}

func newResolver(mode Mode, descs []*apidoc.Descriptor, pages []string) *resolver {
	r := resolver{
		mode:      mode,
		pageNames: make(map[string]struct{}, len(pages)),
	}
	for _, d := range descs {
		r.pages.Set(d.Name, d)
	}
	for _, name := range pages {
		r.pageNames[name] = struct{}{}
	}
	return &r
}

// Resolve returns the site-relative path to the page documenting name,
// with a fragment if name refers to a member of that page.
func (r *resolver) Resolve(name string) (string, bool) {
	d, ok := r.pages.Lookup(name)
	if !ok {
		return "", false
	}

	dest := r.mode.referencePath(d.Name)
	if name == d.Name {
		return dest, true
	}

	// The nearest page may be an ancestor that doesn't define this name.
	member := strings.TrimPrefix(name, d.Name+".")
	for _, m := range d.Members {
		if m.Name == member {
			return dest + "#" + m.Anchor(), true
		}
	}
	return "", false
}

// ResolvePage resolves a link to another narrative page
// written as "usage.md" or "usage.md#section".
func (r *resolver) ResolvePage(dest string) (path string, isPage, ok bool) {
	name, frag, hasFrag := strings.Cut(dest, "#")
	if strings.Contains(name, ":") || !strings.HasSuffix(name, ".md") {
		return "", false, false
	}
	name = strings.TrimPrefix(strings.TrimSuffix(name, ".md"), "./")

	if _, found := r.pageNames[name]; !found {
		return "", true, false
	}
	path = r.mode.pagePath(name)
	if hasFrag {
		path += "#" + frag
	}
	return path, true, true
}
