// Package site builds a static HTML documentation site
// from narrative Markdown pages and API descriptor files.
//
// Pages are rendered in memory first.
// Output is written into a temporary directory next to the destination
// and swapped into place only after the whole site was written,
// so a failed build leaves the previous output untouched.
package site

import (
	"errors"
	"fmt"
)

// ErrWarningsAsErrors is returned in strict mode
// when the build produced warnings.
var ErrWarningsAsErrors = errors.New("warnings treated as errors")

// ErrBrokenLinks is returned by linkcheck builds
// that found unresolved references.
var ErrBrokenLinks = errors.New("broken links found")

// Warning is a non-fatal problem found while building a page.
type Warning struct {
	// Page is the output path of the page, relative to the site root.
	Page string
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%v: %v", w.Page, w.Msg)
}

// Artifact describes the result of a build.
type Artifact struct {
	// Dir holds the output.
	// It's empty for the help mode.
	Dir string

	Mode Mode

	// Pages lists the files written into Dir,
	// as sorted /-separated relative paths.
	Pages []string

	Warnings []Warning
}
