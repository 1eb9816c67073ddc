// Package watch rebuilds documentation when its sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"braces.dev/errtrace"
	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"go.abhg.dev/docmake/internal/pathx"
)

// DefaultDebounce is how long a burst of changes must settle
// before a rebuild begins.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches directory trees for changes.
type Watcher struct {
	Log *log.Logger // required

	// Dirs are the roots to watch, recursively.
	Dirs []string

	// Ignore lists glob patterns matched against file base names.
	// Matching files never trigger a rebuild.
	Ignore []string

	// IgnoreDirs are never watched, and neither is anything under them.
	IgnoreDirs []string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// Watch calls onChange with the sorted list of changed paths
// every time a burst of changes settles.
// onChange is never called concurrently with itself.
// A failing onChange is logged and watching continues.
//
// Watch blocks until ctx is done and then returns nil.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context, []string) error) (err error) {
	f, err := newFilter(w.Ignore, w.IgnoreDirs)
	if err != nil {
		return errtrace.Wrap(err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("fsnotify: %w", err))
	}
	defer func() {
		_ = fsw.Close()
	}()

	for _, dir := range w.Dirs {
		if err := addDirsRecursive(fsw, f, dir); err != nil {
			return errtrace.Wrap(err)
		}
	}
	w.Log.Printf("Watching %v for changes.", strings.Join(w.Dirs, ", "))

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || f.Ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(fsw, f, ev.Name); err != nil {
						w.Log.Printf("watch %v: %v", ev.Name, err)
					}
				}
			}

			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.Log.Printf("watcher error: %v", err)

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			w.Log.Printf("Changed: %v. Rebuilding.", strings.Join(paths, ", "))
			if err := onChange(ctx, paths); err != nil {
				w.Log.Printf("Rebuild failed: %v", err)
			}
		}
	}
}

func addDirsRecursive(fsw *fsnotify.Watcher, f *filter, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && f.Ignored(path) {
			return filepath.SkipDir
		}
		return errtrace.Wrap(fsw.Add(path))
	})
}

type filter struct {
	names []glob.Glob
	dirs  []string
}

func newFilter(patterns, dirs []string) (*filter, error) {
	names := make([]glob.Glob, 0, len(patterns))
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("bad ignore pattern %q: %w", pat, err))
		}
		names = append(names, g)
	}
	return &filter{names: names, dirs: dirs}, nil
}

// Ignored reports whether changes to path should be ignored.
func (f *filter) Ignored(path string) bool {
	for _, dir := range f.dirs {
		if pathx.Descends(dir, path) {
			return true
		}
	}

	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."), // hidden, .#lock files
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		strings.HasSuffix(base, ".pyc"),
		base == "__pycache__":
		return true
	}

	for _, g := range f.names {
		if g.Match(base) {
			return true
		}
	}
	return false
}
