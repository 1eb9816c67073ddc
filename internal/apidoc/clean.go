package apidoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"braces.dev/errtrace"
	"github.com/gobwas/glob"
)

// Clean removes generated descriptor files from dir.
//
// It removes every file whose name matches pattern
// (DefaultPattern if empty),
// every file listed in the manifest left by the last extraction,
// and the manifest itself.
// The manifest catches descriptors that no longer match the pattern
// because the naming convention changed since they were written.
//
// Cleaning an already clean or missing directory is a no-op.
// Clean returns the names of the removed files, sorted.
func Clean(dir, pattern string) ([]string, error) {
	if len(pattern) == 0 {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("bad descriptor pattern %q: %w", pattern, err))
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errtrace.Wrap(err)
	}

	targets := make(map[string]struct{})
	for _, ent := range ents {
		if !ent.IsDir() && g.Match(ent.Name()) {
			targets[ent.Name()] = struct{}{}
		}
	}

	listed, err := readManifest(dir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	for _, name := range listed {
		targets[name] = struct{}{}
	}
	if listed != nil {
		targets[ManifestFile] = struct{}{}
	} else if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
		// Empty manifest.
		targets[ManifestFile] = struct{}{}
	}

	removed := make([]string, 0, len(targets))
	for name := range targets {
		err := os.Remove(filepath.Join(dir, name))
		switch {
		case err == nil:
			removed = append(removed, name)
		case errors.Is(err, os.ErrNotExist):
			// Listed in the manifest but already gone.
		default:
			return nil, errtrace.Wrap(err)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// Exists reports whether dir holds any descriptor files
// matching pattern (DefaultPattern if empty).
func Exists(dir, pattern string) (bool, error) {
	if len(pattern) == 0 {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errtrace.Wrap(err)
	}
	for _, ent := range ents {
		if !ent.IsDir() && g.Match(ent.Name()) {
			return true, nil
		}
	}
	return false, nil
}
