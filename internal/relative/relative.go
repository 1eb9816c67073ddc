// Package relative turns paths relative
// with string manipulation exclusively.
//
// Generated pages link to each other with relative URLs
// so that the site works from any base URL,
// including a plain directory opened in a browser.
package relative

import (
	"fmt"
	"path"
	"strings"

	"go.abhg.dev/docmake/internal/sliceutil"
)

const _slash = "/"

// Path returns a path to dst, relative to the directory src.
// Both paths must be relative or both paths must be absolute,
// and they must both be /-separated.
//
// This operation relies on string manipulation exlusively,
// so it doesn't fail.
func Path(src, dst string) string {
	if path.IsAbs(src) != path.IsAbs(dst) {
		panic(fmt.Sprintf("Path(%q, %q): both must be absolute, or both must be relative", src, dst))
	}
	// src must always be a directory.
	// Drop the trailing /, if any.
	src = strings.TrimSuffix(src, _slash)

	var srcParts, dstParts []string
	if len(src) > 0 {
		srcParts = strings.Split(src, _slash)
	}
	if len(dst) > 0 {
		dstParts = strings.Split(dst, _slash)
	}

	srcParts, dstParts = sliceutil.TrimCommonPrefix(srcParts, dstParts)

	var sb strings.Builder
	for range srcParts {
		if sb.Len() > 0 {
			sb.WriteString(_slash)
		}
		sb.WriteString("..")
	}
	for _, p := range dstParts {
		if sb.Len() > 0 {
			sb.WriteString(_slash)
		}
		sb.WriteString(p)
	}

	return sb.String()
}

// File returns a link to the file dst
// from a page stored in the file src.
// Both are /-separated paths relative to the root of the site.
//
//	File("api/rsoft_cad.html", "index.html") // == "../index.html"
//	File("index.html", "api/index.html")     // == "api/index.html"
//
// A fragment on dst, if any, is kept as-is.
func File(src, dst string) string {
	dst, frag, hasFrag := strings.Cut(dst, "#")

	dir := path.Dir(src)
	if dir == "." {
		dir = ""
	}

	rel := Path(dir, dst)
	if len(rel) == 0 {
		// Linking to own directory.
		rel = "."
	}
	if hasFrag {
		rel += "#" + frag
	}
	return rel
}
