package publish

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"braces.dev/errtrace"
	"github.com/klauspost/compress/gzip"
	"go.abhg.dev/docmake/internal/errdefer"
)

// Artifact is a packaged copy of a built site.
type Artifact struct {
	// Path to the .tar.gz file.
	Path string

	// Files is the number of regular files in the archive.
	Files int

	// SHA256 of the archive, hex-encoded.
	SHA256 string
}

// Pack writes the contents of dir into a gzipped tarball at dst.
// Paths inside the archive are relative to dir.
func Pack(dir, dst string) (_ *Artifact, err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errtrace.Wrap(err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	sum := sha256.New()
	gz := gzip.NewWriter(io.MultiWriter(f, sum))
	tw := tar.NewWriter(gz)

	art := Artifact{Path: dst}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			// Symlinks and devices are never part of a site.
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		art.Files++
		return copyFile(tw, path)
	})
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("pack %v: %w", dir, err))
	}

	if err := tw.Close(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if err := gz.Close(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	art.SHA256 = hex.EncodeToString(sum.Sum(nil))
	return &art, nil
}

func copyFile(w io.Writer, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	_, err = io.Copy(w, f)
	return errtrace.Wrap(err)
}

var errUnsafePath = errors.New("path escapes destination")

// Unpack extracts a tarball written by Pack into dir.
// Entries that would be written outside dir are rejected.
func Unpack(src, dir string) (err error) {
	f, err := os.Open(src)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, gz)

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errtrace.Wrap(err)
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return errtrace.Wrap(fmt.Errorf("%q: %w", hdr.Name, errUnsafePath))
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errtrace.Wrap(err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr); err != nil {
				return errtrace.Wrap(err)
			}
		default:
			// Only files and directories are packed.
		}
	}
}

func writeEntry(target string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errtrace.Wrap(err)
	}
	f, err := os.Create(target)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	_, err = io.Copy(f, r)
	return errtrace.Wrap(err)
}

// artifactName is the file name of the artifact for a run.
func artifactName(ev *Event) string {
	name := strings.NewReplacer("/", "-", " ", "-").Replace(ev.RunID)
	return "github-pages-" + name + ".tar.gz"
}
