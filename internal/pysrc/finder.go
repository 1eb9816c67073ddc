// Package pysrc locates and parses the modules of a Python package
// without importing or executing any of it.
//
// [Finder] walks a package directory and reports [ModuleRef]s,
// and [Parser] turns each reference into a [Module]
// holding the documentable items found in it.
package pysrc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"github.com/gobwas/glob"
)

const _initFile = "__init__.py"

// ErrNotPackage indicates that a directory is not a Python package:
// it does not hold an __init__.py.
var ErrNotPackage = errors.New("not a Python package")

// ModuleRef is a reference to a Python module on disk.
//
// It holds information necessary to parse a module,
// but doesn't yet parse it.
type ModuleRef struct {
	// Name is the fully qualified dotted name of the module.
	// For packages, this is the name of the package.
	Name string

	// Path to the source file on disk.
	// This is empty for implicit namespace packages.
	Path string

	// Source is the /-separated path of the file
	// relative to the parent of the package root.
	// For example, "rsoft_cad/lantern/base_lantern.py".
	Source string

	// Package reports whether this module is a package:
	// an __init__.py or an implicit namespace directory.
	Package bool
}

// Finder searches for the modules of a Python package.
//
// The zero value of this is ready to use.
type Finder struct {
	// ImplicitNamespaces treats directories without an __init__.py
	// as namespace packages instead of skipping them.
	ImplicitNamespaces bool

	// Private includes modules and packages
	// whose names start with an underscore.
	Private bool

	// Exclude lists glob patterns of files and directories to skip.
	// Patterns are matched against /-separated paths
	// relative to the package root, for example "tests/**".
	Exclude []string

	// Logger to write debug messages to.
	//
	// Use nil to disable debug logging.
	DebugLog *log.Logger
}

// FindModules walks the package rooted at the given directory
// and returns references to all modules inside it,
// sorted by their qualified names.
//
// The root must be a directory holding an __init__.py.
func (f *Finder) FindModules(root string) ([]*ModuleRef, error) {
	debug := f.DebugLog
	if debug == nil {
		debug = log.New(io.Discard, "", 0)
	}

	excludes, err := compileGlobs(f.Exclude)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if !info.IsDir() {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w", root, ErrNotPackage))
	}
	if _, err := os.Stat(filepath.Join(root, _initFile)); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w", root, ErrNotPackage))
	}

	pkgName := filepath.Base(root)
	excluded := func(rel string) bool {
		for _, g := range excludes {
			if g.Match(rel) {
				return true
			}
		}
		return false
	}

	var refs []*ModuleRef
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				refs = append(refs, &ModuleRef{
					Name:    pkgName,
					Path:    filepath.Join(p, _initFile),
					Source:  path.Join(pkgName, _initFile),
					Package: true,
				})
				return nil
			}

			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "__pycache__" || !isIdentifier(name) {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, "_") && !f.Private {
				debug.Printf("Skipping private package %v", rel)
				return filepath.SkipDir
			}
			if excluded(rel) {
				debug.Printf("Excluding directory %v", rel)
				return filepath.SkipDir
			}

			ref := &ModuleRef{
				Name:    pkgName + "." + strings.ReplaceAll(rel, "/", "."),
				Source:  path.Join(pkgName, rel, _initFile),
				Package: true,
			}
			if _, err := os.Stat(filepath.Join(p, _initFile)); err == nil {
				ref.Path = filepath.Join(p, _initFile)
			} else if f.ImplicitNamespaces {
				ref.Source = path.Join(pkgName, rel)
			} else {
				debug.Printf("Skipping %v: no %v", rel, _initFile)
				return filepath.SkipDir
			}
			refs = append(refs, ref)
			return nil
		}

		name := d.Name()
		if name == _initFile || !strings.HasSuffix(name, ".py") {
			return nil
		}
		modName := strings.TrimSuffix(name, ".py")
		if !isIdentifier(modName) {
			debug.Printf("Skipping %v: not a valid module name", rel)
			return nil
		}
		if strings.HasPrefix(modName, "_") && !f.Private {
			debug.Printf("Skipping private module %v", rel)
			return nil
		}
		if excluded(rel) {
			debug.Printf("Excluding %v", rel)
			return nil
		}

		qualified := pkgName + "." + strings.ReplaceAll(strings.TrimSuffix(rel, ".py"), "/", ".")
		refs = append(refs, &ModuleRef{
			Name:   qualified,
			Path:   p,
			Source: path.Join(pkgName, rel),
		})
		return nil
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Name < refs[j].Name
	})
	debug.Printf("Found %d modules in %v", len(refs), root)
	return refs, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pat := range patterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("bad exclude pattern %q: %w", pat, err))
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// isIdentifier reports whether s can be used as a Python module name.
func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
