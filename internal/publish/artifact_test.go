package publish

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSite creates the given files under dir.
// Keys are /-separated relative paths.
func writeSite(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

// readSite returns the contents of all regular files under dir,
// keyed by /-separated relative path.
func readSite(t *testing.T, dir string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(bs)
		return nil
	})
	require.NoError(t, err)
	return files
}

var _testSite = map[string]string{
	"index.html":                 "<h1>Home</h1>",
	"usage.html":                 "<h1>Usage</h1>",
	"api/index.html":             "<h1>API</h1>",
	"api/rsoft_cad.utils.html":   "<h1>rsoft_cad.utils</h1>",
	"_static/main.css":           "body {}",
	"api/rsoft_cad.lantern.html": "<h1>rsoft_cad.lantern</h1>",
}

func TestPackUnpack(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	writeSite(t, site, _testSite)

	dst := filepath.Join(t.TempDir(), "artifacts", "site.tar.gz")
	art, err := Pack(site, dst)
	require.NoError(t, err)
	assert.Equal(t, dst, art.Path)
	assert.Equal(t, len(_testSite), art.Files)
	assert.Len(t, art.SHA256, 64)
	assert.FileExists(t, dst)

	out := t.TempDir()
	require.NoError(t, Unpack(dst, out))
	assert.Equal(t, _testSite, readSite(t, out))

	t.Run("stable checksum", func(t *testing.T) {
		again, err := Pack(site, filepath.Join(t.TempDir(), "again.tar.gz"))
		require.NoError(t, err)
		assert.Equal(t, art.SHA256, again.SHA256)
	})
}

func TestPack_missingDir(t *testing.T) {
	t.Parallel()

	_, err := Pack(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "x.tar.gz"))
	assert.Error(t, err)
}

func TestUnpack_unsafePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		name string
	}{
		{desc: "parent", name: "../evil.html"},
		{desc: "nested parent", name: "api/../../evil.html"},
		{desc: "absolute", name: "/tmp/evil.html"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			src := filepath.Join(t.TempDir(), "bad.tar.gz")
			f, err := os.Create(src)
			require.NoError(t, err)
			gz := gzip.NewWriter(f)
			tw := tar.NewWriter(gz)
			body := "pwned"
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     tt.name,
				Typeflag: tar.TypeReg,
				Mode:     0o644,
				Size:     int64(len(body)),
			}))
			_, err = tw.Write([]byte(body))
			require.NoError(t, err)
			require.NoError(t, tw.Close())
			require.NoError(t, gz.Close())
			require.NoError(t, f.Close())

			root := t.TempDir()
			out := filepath.Join(root, "out")
			require.NoError(t, os.Mkdir(out, 0o755))

			err = Unpack(src, out)
			assert.ErrorIs(t, err, errUnsafePath)
			assert.NoFileExists(t, filepath.Join(root, "evil.html"))
		})
	}
}

func TestArtifactName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "github-pages-42.tar.gz", artifactName(&Event{RunID: "42"}))
	assert.Equal(t, "github-pages-a-b.tar.gz", artifactName(&Event{RunID: "a/b"}))
}
