package pathx

import (
	"errors"
	"os"

	"braces.dev/errtrace"
)

// ReplaceDir replaces the directory dst with the directory src
// by renaming them.
// Both must be on the same file system.
//
// The previous contents of dst are moved aside first
// and restored if src can't be moved into place.
// dst doesn't need to exist.
func ReplaceDir(src, dst string) error {
	old := dst + ".old"
	if err := os.RemoveAll(old); err != nil {
		return errtrace.Wrap(err)
	}
	if err := os.Rename(dst, old); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errtrace.Wrap(err)
	}
	if err := os.Rename(src, dst); err != nil {
		if rerr := os.Rename(old, dst); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = errors.Join(err, rerr)
		}
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(os.RemoveAll(old))
}
