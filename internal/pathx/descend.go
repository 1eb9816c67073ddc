// Package pathx provides extensions to the [path/filepath] package.
package pathx

import (
	"path/filepath"
	"strings"
)

// Descends reports whether the file path b is equal to,
// or a descendant of, the file path a.
// Both paths are cleaned before comparison.
func Descends(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if !strings.HasPrefix(b, a) {
		return false
	}
	b = b[len(a):]
	return b == "" || b[0] == filepath.Separator || strings.HasSuffix(a, string(filepath.Separator))
}
