// Package sliceutil holds generic helpers for slices
// that the standard library does not provide.
package sliceutil

// CommonPrefixLen reports how many leading elements a and b share.
func CommonPrefixLen[T comparable](a, b []T) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// TrimCommonPrefix drops the leading elements shared by a and b
// and returns what remains of each.
// A slice with nothing left is returned as nil.
func TrimCommonPrefix[T comparable](a, b []T) (restA, restB []T) {
	n := CommonPrefixLen(a, b)
	if n < len(a) {
		restA = a[n:]
	}
	if n < len(b) {
		restB = b[n:]
	}
	return restA, restB
}
