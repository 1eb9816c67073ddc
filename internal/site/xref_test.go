package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	r := newResolver(HTMLMode, _testDescriptors, []string{"index", "usage"})

	tests := []struct {
		give   string
		want   string
		wantOK bool
	}{
		{give: "pkg", want: "api/pkg.html", wantOK: true},
		{give: "pkg.b", want: "api/pkg.b.html", wantOK: true},
		{give: "pkg.b.B", want: "api/pkg.b.html#B", wantOK: true},
		{give: "pkg.b.B.m2", want: "api/pkg.b.html#B.m2", wantOK: true},
		{give: "pkg.b.B.m3"},
		{give: "pkg.c"},
		{give: "other"},
		{give: ""},
	}

	for _, tt := range tests {
		got, ok := r.Resolve(tt.give)
		assert.Equal(t, tt.wantOK, ok, "Resolve(%q)", tt.give)
		assert.Equal(t, tt.want, got, "Resolve(%q)", tt.give)
	}
}

func TestResolver_ResolvePage(t *testing.T) {
	t.Parallel()

	r := newResolver(DirHTMLMode, nil, []string{"index", "usage"})

	tests := []struct {
		give       string
		want       string
		wantIsPage bool
		wantOK     bool
	}{
		{give: "usage.md", want: "usage/index.html", wantIsPage: true, wantOK: true},
		{give: "./index.md#top", want: "index.html#top", wantIsPage: true, wantOK: true},
		{give: "missing.md", wantIsPage: true},
		{give: "https://example.com/a.md"},
		{give: "image.png"},
		{give: "#section"},
	}

	for _, tt := range tests {
		got, isPage, ok := r.ResolvePage(tt.give)
		assert.Equal(t, tt.wantIsPage, isPage, "ResolvePage(%q)", tt.give)
		assert.Equal(t, tt.wantOK, ok, "ResolvePage(%q)", tt.give)
		assert.Equal(t, tt.want, got, "ResolvePage(%q)", tt.give)
	}
}
