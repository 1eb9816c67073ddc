package pysrc

import (
	"math"
	"strings"
)

// unquote strips the prefix and quotes from a Python string literal.
// Escape sequences are left as-is
// since docstrings are conventionally written without them.
func unquote(lit string) string {
	// Prefixes: r, u, b, f and combinations thereof.
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

// CleanDoc normalizes the indentation of a docstring.
//
// Tabs are expanded, leading whitespace on the first line is dropped,
// the common indentation of the remaining lines is removed,
// and leading and trailing blank lines are trimmed.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	indent := math.MaxInt
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if len(stripped) == 0 {
			continue
		}
		indent = min(indent, len(line)-len(stripped))
	}

	lines[0] = strings.TrimSpace(lines[0])
	if indent < math.MaxInt {
		for i := 1; i < len(lines); i++ {
			line := lines[i]
			if len(line) >= indent {
				lines[i] = strings.TrimRight(line[indent:], " ")
			} else {
				lines[i] = strings.TrimSpace(line)
			}
		}
	}

	for len(lines) > 0 && len(lines[0]) == 0 {
		lines = lines[1:]
	}
	for len(lines) > 0 && len(strings.TrimSpace(lines[len(lines)-1])) == 0 {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
