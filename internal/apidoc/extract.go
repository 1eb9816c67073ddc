package apidoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/pysrc"
)

// ModuleFinder searches for modules in a Python package.
type ModuleFinder interface {
	FindModules(root string) ([]*pysrc.ModuleRef, error)
}

var _ ModuleFinder = (*pysrc.Finder)(nil)

// ModuleParser loads a module reference from disk
// and parses its contents.
type ModuleParser interface {
	ParseModule(*pysrc.ModuleRef) (*pysrc.Module, error)
}

var _ ModuleParser = (*pysrc.Parser)(nil)

// Extractor generates descriptor files for a Python package.
//
// In terms of code organization,
// Extractor separates finding and parsing sources
// from writing descriptors to aid in testability.
type Extractor struct {
	Log       *log.Logger // required
	Finder    ModuleFinder
	Parser    ModuleParser
	Assembler *Assembler

	// Force overwrites descriptor files that already exist.
	// Without it, existing files are left as-is and reported as skipped.
	Force bool
}

// Result reports the outcome of an extraction.
type Result struct {
	// Descriptors that were extracted, sorted by name.
	Descriptors []*Descriptor

	// Written lists descriptor files that were written.
	Written []string

	// Skipped lists descriptor files that already existed
	// and were left alone because Force was not set.
	Skipped []string

	// Removed lists descriptor files from the previous extraction
	// whose module or class no longer exists.
	Removed []string
}

// Extract finds all modules of the package at root,
// and writes one descriptor file per module or class into outDir.
//
// All modules are parsed before anything is written.
// If the package can't be traversed or any module fails to parse,
// an *ExtractError is returned and outDir is left untouched.
// Extract never modifies the package itself.
func (e *Extractor) Extract(ctx context.Context, root, outDir string) (*Result, error) {
	logger := e.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	finder := e.Finder
	if finder == nil {
		finder = new(pysrc.Finder)
	}
	parser := e.Parser
	if parser == nil {
		parser = new(pysrc.Parser)
	}
	assembler := e.Assembler
	if assembler == nil {
		assembler = new(Assembler)
	}

	refs, err := finder.FindModules(root)
	if err != nil {
		return nil, errtrace.Wrap(&ExtractError{Path: root, Err: err})
	}

	var descs []*Descriptor
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, errtrace.Wrap(err)
		}

		mod, err := parser.ParseModule(ref)
		if err != nil {
			path := ref.Path
			if len(path) == 0 {
				path = ref.Source
			}
			return nil, errtrace.Wrap(&ExtractError{Path: path, Err: err})
		}
		descs = append(descs, assembler.Assemble(mod)...)
	}
	if len(descs) == 0 {
		return nil, errtrace.Wrap(&ExtractError{Path: root, Err: errors.New("no modules found")})
	}

	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
	linkSubmodules(descs)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errtrace.Wrap(err)
	}

	res := Result{Descriptors: descs}
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		name := d.FileName()
		names = append(names, name)

		if !e.Force {
			if _, err := os.Stat(filepath.Join(outDir, name)); err == nil {
				logger.Printf("File %v exists, skipping.", name)
				res.Skipped = append(res.Skipped, name)
				continue
			}
		}

		if err := WriteFile(outDir, d); err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("write %v: %w", name, err))
		}
		res.Written = append(res.Written, name)
	}

	removed, err := removeStale(outDir, names)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("remove stale descriptors: %w", err))
	}
	res.Removed = removed

	if err := writeManifest(outDir, names); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("write manifest: %w", err))
	}

	logger.Printf("Extracted %d descriptors from %v (%d written, %d skipped, %d removed)",
		len(descs), root, len(res.Written), len(res.Skipped), len(res.Removed))
	return &res, nil
}

// removeStale deletes files listed in the manifest in dir
// that are not in keep.
// It returns the names of the removed files, sorted.
func removeStale(dir string, keep []string) ([]string, error) {
	listed, err := readManifest(dir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	current := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		current[name] = struct{}{}
	}

	var removed []string
	for _, name := range listed {
		if _, ok := current[name]; ok {
			continue
		}
		err := os.Remove(filepath.Join(dir, name))
		switch {
		case err == nil:
			removed = append(removed, name)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, errtrace.Wrap(err)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// linkSubmodules fills Submodules for package descriptors
// with their direct children.
// descs must be sorted by name.
func linkSubmodules(descs []*Descriptor) {
	pkgs := make(map[string]*Descriptor)
	for _, d := range descs {
		if d.Kind == ModuleKind && d.Package {
			pkgs[d.Name] = d
		}
	}

	for _, d := range descs {
		if d.Kind != ModuleKind {
			continue
		}
		idx := strings.LastIndexByte(d.Name, '.')
		if idx < 0 {
			continue
		}
		if parent, ok := pkgs[d.Name[:idx]]; ok {
			parent.Submodules = append(parent.Submodules, d.Name)
		}
	}
}
