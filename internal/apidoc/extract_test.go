package apidoc

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/docmake/internal/iotest"
	"go.abhg.dev/docmake/internal/pysrc"
)

// writeTree creates the given files under dir.
// Keys are /-separated relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

// readDir returns the contents of all files in dir.
func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)

	files := make(map[string]string, len(ents))
	for _, ent := range ents {
		bs, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		require.NoError(t, err)
		files[ent.Name()] = string(bs)
	}
	return files
}

var _lanternPackage = map[string]string{
	"rsoft_cad/__init__.py": `"""Tools for photonic lantern design."""
`,
	"rsoft_cad/utils.py": `"""Helpers."""

def fiber_radius(dia):
    """Radius of a fiber with the given diameter."""
    return dia / 2
`,
	"rsoft_cad/lantern/__init__.py": ``,
	"rsoft_cad/lantern/base_lantern.py": `class BaseLantern:
    """Base class for lanterns."""

    def __init__(self, cores=7):
        self.cores = cores

    def build(self):
        """Build the lantern."""
`,
	"rsoft_cad/lantern/__pycache__/junk.py": `not python at all (`,
}

func newTestExtractor(t *testing.T) *Extractor {
	return &Extractor{
		Log:       log.New(iotest.Writer(t), "", 0),
		Finder:    &pysrc.Finder{DebugLog: log.New(iotest.Writer(t), "", 0)},
		Parser:    new(pysrc.Parser),
		Assembler: &Assembler{ModuleFirst: true},
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, _lanternPackage)
	out := t.TempDir()

	res, err := newTestExtractor(t).Extract(context.Background(), filepath.Join(src, "rsoft_cad"), out)
	require.NoError(t, err)

	want := []string{
		"rsoft_cad.apidoc.yaml",
		"rsoft_cad.lantern.apidoc.yaml",
		"rsoft_cad.lantern.base_lantern.apidoc.yaml",
		"rsoft_cad.utils.apidoc.yaml",
	}
	assert.Equal(t, want, res.Written)
	assert.Empty(t, res.Skipped)

	descs, err := Load(out)
	require.NoError(t, err)
	require.Len(t, descs, 4)

	byName := make(map[string]*Descriptor)
	for _, d := range descs {
		byName[d.Name] = d
	}

	root := byName["rsoft_cad"]
	require.NotNil(t, root)
	assert.True(t, root.Package)
	assert.Equal(t, "Tools for photonic lantern design.", root.Doc)
	assert.Equal(t, []string{"rsoft_cad.lantern", "rsoft_cad.utils"}, root.Submodules)

	assert.Equal(t, []string{"rsoft_cad.lantern.base_lantern"}, byName["rsoft_cad.lantern"].Submodules)
	assert.Equal(t,
		[]string{"BaseLantern", "BaseLantern.__init__", "BaseLantern.build"},
		memberNames(byName["rsoft_cad.lantern.base_lantern"].Members))

	manifest, err := readManifest(out)
	require.NoError(t, err)
	assert.Equal(t, want, manifest)

	// The package itself is never touched.
	_, err = os.Stat(filepath.Join(src, "rsoft_cad", ManifestFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractor_Extract_idempotent(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, _lanternPackage)
	root := filepath.Join(src, "rsoft_cad")
	out := t.TempDir()

	e := newTestExtractor(t)
	e.Force = true

	_, err := e.Extract(context.Background(), root, out)
	require.NoError(t, err)
	first := readDir(t, out)

	res, err := e.Extract(context.Background(), root, out)
	require.NoError(t, err)
	assert.Len(t, res.Written, 4)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, first, readDir(t, out))
}

func TestExtractor_Extract_deletedModule(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"p/__init__.py": "",
		"p/a.py":        "A = 1\n",
		"p/b.py":        "B = 2\n",
	})
	root := filepath.Join(src, "p")
	out := t.TempDir()
	writeTree(t, out, map[string]string{"index.md": "# Home"})

	e := newTestExtractor(t)
	e.Force = true

	_, err := e.Extract(context.Background(), root, out)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(out, "p.b.apidoc.yaml"))

	require.NoError(t, os.Remove(filepath.Join(root, "b.py")))

	res, err := e.Extract(context.Background(), root, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"p.b.apidoc.yaml"}, res.Removed)

	descs, err := Load(out)
	require.NoError(t, err)
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"p", "p.a"}, names)
	assert.FileExists(t, filepath.Join(out, "index.md"), "only listed files are removed")

	manifest, err := readManifest(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"p.a.apidoc.yaml", "p.apidoc.yaml"}, manifest)
}

func TestExtractor_Extract_noForce(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, _lanternPackage)
	out := t.TempDir()
	writeTree(t, out, map[string]string{
		"rsoft_cad.utils.apidoc.yaml": "name: rsoft_cad.utils\nkind: module\nmodule_first: true\n",
	})

	res, err := newTestExtractor(t).Extract(context.Background(), filepath.Join(src, "rsoft_cad"), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"rsoft_cad.utils.apidoc.yaml"}, res.Skipped)
	assert.Len(t, res.Written, 3)

	d, err := ReadFile(filepath.Join(out, "rsoft_cad.utils.apidoc.yaml"))
	require.NoError(t, err)
	assert.Empty(t, d.Members, "existing file must be left alone")
}

func TestExtractor_Extract_moduleFirst(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "",
		"pkg/b.py": `class B:
    def m1(self):
        pass

    def m2(self):
        pass
`,
	})
	out := t.TempDir()

	_, err := newTestExtractor(t).Extract(context.Background(), filepath.Join(src, "pkg"), out)
	require.NoError(t, err)

	a, err := ReadFile(filepath.Join(out, "pkg.a.apidoc.yaml"))
	require.NoError(t, err)
	assert.Empty(t, a.Members)

	b, err := ReadFile(filepath.Join(out, "pkg.b.apidoc.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "B.m1", "B.m2"}, memberNames(b.Members))
	assert.True(t, b.ModuleFirst)
}

func TestExtractor_Extract_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc  string
		files map[string]string
		root  string
	}{
		{
			desc: "missing root",
			root: "does_not_exist",
		},
		{
			desc:  "not a package",
			files: map[string]string{"scripts/run.py": "print('hi')\n"},
			root:  "scripts",
		},
		{
			desc: "syntax error",
			files: map[string]string{
				"pkg/__init__.py": "",
				"pkg/good.py":     "X = 1\n",
				"pkg/zbad.py":     "def broken(:\n    pass\n",
			},
			root: "pkg",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			src := t.TempDir()
			writeTree(t, src, tt.files)
			out := filepath.Join(t.TempDir(), "out")

			_, err := newTestExtractor(t).Extract(context.Background(), filepath.Join(src, tt.root), out)
			require.Error(t, err)

			var extractErr *ExtractError
			assert.True(t, errors.As(err, &extractErr), "want ExtractError, got %v", err)

			_, err = os.Stat(out)
			assert.ErrorIs(t, err, os.ErrNotExist, "nothing must be written")
		})
	}
}

func TestExtractor_Extract_canceled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, _lanternPackage)
	out := filepath.Join(t.TempDir(), "out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(t).Extract(ctx, filepath.Join(src, "rsoft_cad"), out)
	assert.ErrorIs(t, err, context.Canceled)
}
