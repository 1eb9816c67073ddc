package narrative

import (
	"bytes"
	"errors"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// FrontMatter holds the YAML block at the top of a page.
type FrontMatter struct {
	Title string `yaml:"title"`

	// Description is used as the page synopsis.
	Description string `yaml:"description"`
}

var errUnclosedFrontMatter = errors.New("front matter is not closed with ---")

// splitFrontMatter separates a leading "---" delimited YAML block
// from the Markdown body.
// A document without front matter is returned as the body unchanged.
func splitFrontMatter(content []byte) (raw, body []byte, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}

	delim := []byte("---" + nl)
	if !bytes.HasPrefix(content, delim) {
		return nil, content, nil
	}

	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], nil
	}

	if idx := bytes.Index(rest, []byte(nl+"---"+nl)); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+2*len(nl)+3:], nil
	}
	// Closing delimiter at the very end of the file.
	if end := nl + "---"; bytes.HasSuffix(rest, []byte(end)) {
		return rest[:len(rest)-len(end)+len(nl)], nil, nil
	}
	return nil, nil, errtrace.Wrap(errUnclosedFrontMatter)
}

func parseFrontMatter(raw []byte) (*FrontMatter, error) {
	var fm FrontMatter
	if len(bytes.TrimSpace(raw)) == 0 {
		return &fm, nil
	}
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &fm, nil
}
