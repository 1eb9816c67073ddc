package apidoc

import "fmt"

// ExtractError reports that descriptors could not be extracted
// from a package.
// No descriptor files are written when this is returned.
type ExtractError struct {
	// Path that failed: the package root or a module inside it.
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %v: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
