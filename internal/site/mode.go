package site

import (
	"fmt"
	"strings"

	"braces.dev/errtrace"
)

// Mode selects the kind of output the builder produces.
type Mode string

// Supported modes.
const (
	// HTMLMode writes one file per page: usage.html.
	HTMLMode Mode = "html"

	// DirHTMLMode writes one directory per page: usage/index.html.
	DirHTMLMode Mode = "dirhtml"

	// LinkcheckMode validates cross-references
	// and writes a report to output.txt.
	LinkcheckMode Mode = "linkcheck"

	// HelpMode lists the available modes.
	HelpMode Mode = "help"
)

// Modes lists all supported modes in the order they're documented.
var Modes = []Mode{HTMLMode, DirHTMLMode, LinkcheckMode, HelpMode}

var _modeDescriptions = map[Mode]string{
	HTMLMode:      "to make standalone HTML files",
	DirHTMLMode:   "to make HTML files named index.html in directories",
	LinkcheckMode: "to check all cross-references and page links for integrity",
	HelpMode:      "to list the available modes",
}

// Description is a short description of what the mode builds.
func (m Mode) Description() string {
	return _modeDescriptions[m]
}

// ParseMode parses a mode name.
// Unknown names are an error that lists the valid modes.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}

	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return "", errtrace.Wrap(fmt.Errorf("unknown builder mode %q: must be one of %v", s, strings.Join(names, ", ")))
}

// pagePath returns the /-separated output path of a page
// relative to the root of the site.
// name is a narrative page name
// or "api/" followed by a qualified name.
func (m Mode) pagePath(name string) string {
	if m == DirHTMLMode {
		if name == "index" {
			return "index.html"
		}
		return name + "/index.html"
	}
	return name + ".html"
}

// apiIndexPath is the path of the API index page.
const apiIndexPath = "api/index.html"

func (m Mode) referencePath(qualname string) string {
	return m.pagePath("api/" + qualname)
}
