package narrative

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"braces.dev/errtrace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageExt is the file extension of narrative pages.
const PageExt = ".md"

// Page is a hand-written Markdown page.
type Page struct {
	// Name of the page as listed in the navigation,
	// for example "index" or "usage".
	Name string

	// Path to the source file.
	Path string

	Title       string
	Description string

	// Body is the Markdown source without front matter.
	Body []byte
}

// LoadPages reads every page listed in the navigation, in order.
//
// A page that is listed but missing is a *ConfigError naming the path.
// All pages are read before returning
// so that a bad navigation entry is reported before anything is built.
func LoadPages(sourceDir string, cfg *Config) ([]*Page, error) {
	pages := make([]*Page, 0, len(cfg.Nav))
	for _, name := range cfg.Nav {
		path := filepath.Join(sourceDir, name+PageExt)
		page, err := ReadPage(name, path)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// ReadPage reads a single page from disk.
func ReadPage(name, path string) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("page %q is listed in %v but does not exist", name, ConfigFile)
		}
		return nil, errtrace.Wrap(&ConfigError{Path: path, Err: err})
	}

	raw, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, errtrace.Wrap(&ConfigError{Path: path, Err: err})
	}
	fm, err := parseFrontMatter(raw)
	if err != nil {
		return nil, errtrace.Wrap(&ConfigError{Path: path, Err: fmt.Errorf("front matter: %w", err)})
	}

	title := fm.Title
	if len(title) == 0 {
		title = firstHeading(body)
	}
	if len(title) == 0 {
		title = titleFromName(name)
	}

	return &Page{
		Name:        name,
		Path:        path,
		Title:       title,
		Description: fm.Description,
		Body:        body,
	}, nil
}

// firstHeading returns the text of the first ATX heading in body,
// skipping fenced code blocks.
func firstHeading(body []byte) string {
	var fence string
	scan := bufio.NewScanner(bytes.NewReader(body))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if len(fence) > 0 {
			if strings.HasPrefix(line, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			fence = line[:3]
			continue
		}

		if !strings.HasPrefix(line, "#") {
			continue
		}
		text := strings.TrimLeft(line, "#")
		if len(line)-len(text) > 6 || (len(text) > 0 && text[0] != ' ' && text[0] != '\t') {
			continue // not a heading
		}
		text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "#"))
		if len(text) > 0 {
			return text
		}
	}
	return ""
}

// titleFromName turns a page name like "getting_started"
// into "Getting Started".
func titleFromName(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(name)
}
