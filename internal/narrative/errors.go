package narrative

import "fmt"

// ConfigError reports a problem with the site configuration
// or the narrative sources it refers to.
// These are detected before anything is written.
type ConfigError struct {
	// Path of the offending file or directory.
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %v: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
