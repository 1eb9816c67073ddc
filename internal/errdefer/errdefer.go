// Package errdefer provides functions for running operations
// that must be deferred until the end of a function,
// but which may return errors that should be returned from the function.
package errdefer

import (
	"errors"
	"io"
	"os"
)

// Close calls Close on the given Closer,
// and joins any error returned with the given error.
//
// Use it inside a defer statement with a named return.
func Close(err *error, closer io.Closer) {
	*err = errors.Join(*err, closer.Close())
}

// RemoveAllOnError deletes the given path and everything under it
// if the function is returning a non-nil error.
// Errors from the removal are joined with the original error.
//
// Use it inside a defer statement with a named return
// to drop half-written output directories.
func RemoveAllOnError(err *error, path string) {
	if *err == nil {
		return
	}
	*err = errors.Join(*err, os.RemoveAll(path))
}
