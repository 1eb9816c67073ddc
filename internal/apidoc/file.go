package apidoc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/errdefer"
	"gopkg.in/yaml.v3"
)

// Encode writes a descriptor as YAML.
// The output is a pure function of the descriptor.
func Encode(w io.Writer, d *Descriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(enc.Close())
}

// Decode reads a single descriptor from YAML.
func Decode(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if len(d.Name) == 0 {
		return nil, errtrace.Wrap(errors.New("descriptor has no name"))
	}
	switch d.Kind {
	case ModuleKind, ClassKind:
	default:
		return nil, errtrace.Wrap(fmt.Errorf("descriptor %v: unknown kind %q", d.Name, d.Kind))
	}
	return &d, nil
}

// ReadFile reads a descriptor from a file.
func ReadFile(path string) (_ *Descriptor, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	d, err := Decode(f)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w", path, err))
	}
	return d, nil
}

// WriteFile writes a descriptor into the given directory
// under its [Descriptor.FileName].
func WriteFile(dir string, d *Descriptor) error {
	var buff bytes.Buffer
	if err := Encode(&buff, d); err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(os.WriteFile(filepath.Join(dir, d.FileName()), buff.Bytes(), 0o644))
}

// Load reads all descriptor files in the given directory,
// sorted by qualified name.
// A directory without descriptors yields an empty list.
func Load(dir string) ([]*Descriptor, error) {
	matches, err := filepath.Glob(filepath.Join(dir, DefaultPattern))
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	sort.Strings(matches)

	descs := make([]*Descriptor, 0, len(matches))
	for _, path := range matches {
		d, err := ReadFile(path)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		descs = append(descs, d)
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
	return descs, nil
}

// readManifest returns the file names listed in the manifest
// in the given directory.
// A missing manifest is not an error.
func readManifest(dir string) (_ []string, err error) {
	f, err := os.Open(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	var names []string
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		// Only plain file names. Never follow paths out of dir.
		if filepath.Base(line) != line || line == "." || line == ".." {
			continue
		}
		names = append(names, line)
	}
	return names, errtrace.Wrap(scan.Err())
}

func writeManifest(dir string, names []string) error {
	names = append([]string(nil), names...)
	sort.Strings(names)

	var buff bytes.Buffer
	buff.WriteString("# Descriptor files written by docmake apidoc.\n")
	for _, name := range names {
		buff.WriteString(name)
		buff.WriteByte('\n')
	}
	return errtrace.Wrap(os.WriteFile(filepath.Join(dir, ManifestFile), buff.Bytes(), 0o644))
}
