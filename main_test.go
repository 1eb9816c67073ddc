package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/docmake/internal/iotest"
)

func TestMainCmd_help(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-h"})
	assert.Zero(t, exitCode, "-h should have zero status code")
}

func TestMainCmd_version(t *testing.T) {
	t.Parallel()

	var buff bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: &buff,
		Stderr: iotest.Writer(t),
	}).Run([]string{"-version"})
	assert.Zero(t, exitCode, "-version should have zero status code")

	assert.Contains(t, buff.String(), "docmake")
	assert.Contains(t, buff.String(), _version)
}

func TestMainCmd_unknownFlag(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"--this-flag-does-not-exist"})
	assert.NotZero(t, exitCode, "unknown flag should have non-zero status code")
}

func TestMainCmd_noTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var stdout bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: &stdout,
		Stderr: iotest.Writer(t),
	}).Run([]string{"-C", dir})
	assert.Zero(t, exitCode)
	assert.Contains(t, stdout.String(), "rebuild")

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, ents, "help must not build anything")
}

func TestMainCmd_badOptions(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: &stderr,
	}).Run([]string{"-C", t.TempDir(), "-opts", "-W extra", "html"})
	assert.NotZero(t, exitCode)
	assert.Contains(t, stderr.String(), "docmake: unexpected builder options: extra")
}

func TestMainCmd_rebuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"docs/docs.yaml": "project: rsoft_cad\nrelease: \"0.3\"\nnav: [index, usage]\n",
		"docs/index.md":  "# RSoft CAD\n\nStart with [the utils](api:rsoft_cad.utils).\n",
		"docs/usage.md":  "# Usage\n\nSee [home](index.md).\n",

		"src/rsoft_cad/__init__.py": `"""Photonic lantern design."""` + "\n",
		"src/rsoft_cad/utils.py":    "def fiber_radius(dia):\n    return dia / 2\n",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	docs := filepath.Join(root, "docs")
	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
		Getenv: noEnv,
	}).Run([]string{"-C", docs, "-opts", "-W", "-debug", "rebuild"})
	require.Zero(t, exitCode, "expected success")

	outDir := filepath.Join(docs, "_build", "html")
	fsys := os.DirFS(outDir)
	var got []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		got = append(got, path)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)

	assert.Equal(t, []string{
		"_static/main.css",
		"api/index.html",
		"api/rsoft_cad.html",
		"api/rsoft_cad.utils.html",
		"index.html",
		"usage.html",
	}, got)

	assert.FileExists(t, filepath.Join(docs, "rsoft_cad.utils.apidoc.yaml"))
}

// Runs the build the CI workflow runs, against a copy of the example project.
func TestMainCmd_exampleProject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc       string
		env        map[string]string
		wantDeploy bool
	}{
		{
			desc: "push",
			env: map[string]string{
				"GITHUB_EVENT_NAME": "push",
				"GITHUB_REF_NAME":   "main",
				"GITHUB_RUN_ID":     "42",
			},
			wantDeploy: true,
		},
		{
			desc: "pull request",
			env: map[string]string{
				"GITHUB_EVENT_NAME": "pull_request",
				"GITHUB_HEAD_REF":   "feature",
				"GITHUB_BASE_REF":   "main",
				"GITHUB_RUN_ID":     "43",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			require.NoError(t, os.CopyFS(root, os.DirFS("example")))
			docs := filepath.Join(root, "docs")

			exitCode := (&mainCmd{
				Stdout: iotest.Writer(t),
				Stderr: iotest.Writer(t),
				Getenv: func(k string) string { return tt.env[k] },
			}).Run([]string{"-C", docs, "-opts", "-W", "publish"})
			require.Zero(t, exitCode, "expected success")

			for _, page := range []string{"index.html", "installation.html", "quickstart.html", "api/rsoft_cad.lantern.base_lantern.html"} {
				assert.FileExists(t, filepath.Join(root, "_build", filepath.FromSlash(page)))
			}

			deployed := filepath.Join(docs, "_build", "deploy")
			if tt.wantDeploy {
				assert.FileExists(t, filepath.Join(deployed, "quickstart.html"))
				assert.FileExists(t, filepath.Join(deployed, ".nojekyll"))
			} else {
				assert.NoDirExists(t, deployed)
			}
		})
	}
}

func TestMainCmd_strictFailure(t *testing.T) {
	t.Parallel()

	docs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.md"),
		[]byte("See [missing](api:nope.missing).\n"), 0o644))

	var stderr bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: &stderr,
		Getenv: noEnv,
	}).Run([]string{"-C", docs, "-opts", "-W", "html"})
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "WARNING")
	assert.Contains(t, stderr.String(), "docmake: html:")
	assert.NoDirExists(t, filepath.Join(docs, "_build", "html"))
}
