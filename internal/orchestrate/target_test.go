package orchestrate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/docmake/internal/site"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give string
		want Target
	}{
		{"help", Target{Kind: HelpTarget}},
		{"apidoc", Target{Kind: APIDocTarget}},
		{"clean-apidoc", Target{Kind: CleanAPIDocTarget}},
		{"rebuild", Target{Kind: RebuildTarget}},
		{"gh-pages", Target{Kind: GHPagesTarget}},
		{"publish", Target{Kind: PublishTarget}},
		{"watch", Target{Kind: WatchTarget}},
		{"html", Target{Kind: PassthroughTarget, Mode: site.HTMLMode}},
		{"dirhtml", Target{Kind: PassthroughTarget, Mode: site.DirHTMLMode}},
		{"latexpdf", Target{Kind: PassthroughTarget, Mode: "latexpdf"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTarget(tt.give)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.give, got.String())
		})
	}
}

func TestParseTarget_empty(t *testing.T) {
	t.Parallel()

	_, err := ParseTarget("")
	assert.Error(t, err)
}

func TestParseTargets(t *testing.T) {
	t.Parallel()

	got, err := ParseTargets(nil)
	require.NoError(t, err)
	assert.Equal(t, []Target{{Kind: HelpTarget}}, got)

	got, err = ParseTargets([]string{"clean-apidoc", "html"})
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{Kind: CleanAPIDocTarget},
		{Kind: PassthroughTarget, Mode: site.HTMLMode},
	}, got)
}

func TestPlan_Steps(t *testing.T) {
	t.Parallel()

	plan := NewPlan(filepath.FromSlash("/repo/docs"))
	html := filepath.FromSlash("/repo/docs/_build/html")
	pages := filepath.FromSlash("/repo/_build")

	tests := []struct {
		desc string
		give Target
		want []Step
	}{
		{
			desc: "rebuild",
			give: Target{Kind: RebuildTarget},
			want: []Step{
				{Kind: CleanStep},
				{Kind: ExtractStep},
				{Kind: BuildStep, Mode: site.HTMLMode, Dir: html},
			},
		},
		{
			desc: "gh-pages",
			give: Target{Kind: GHPagesTarget},
			want: []Step{
				{Kind: CleanStep},
				{Kind: ExtractStep},
				{Kind: BuildStep, Mode: site.HTMLMode, Dir: pages},
				{Kind: NoJekyllStep, Dir: pages},
				{Kind: AnnounceStep, Dir: pages},
			},
		},
		{
			desc: "passthrough",
			give: Target{Kind: PassthroughTarget, Mode: site.LinkcheckMode},
			want: []Step{
				{Kind: BuildStep, Mode: site.LinkcheckMode, Dir: filepath.FromSlash("/repo/docs/_build/linkcheck")},
			},
		},
		{
			desc: "apidoc",
			give: Target{Kind: APIDocTarget},
			want: []Step{{Kind: ExtractStep}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, plan.Steps(tt.give))
		})
	}
}

func TestPlan_immutable(t *testing.T) {
	t.Parallel()

	base := NewPlan("docs")
	changed := base.
		WithBuildDir("out").
		WithPagesDir(filepath.FromSlash("/srv/pages")).
		WithPackageDir(filepath.FromSlash("../src/pkg")).
		WithForce(false).
		WithOptions(site.Options{Strict: true})

	assert.Equal(t, filepath.Join("docs", "_build"), base.BuildDir)
	assert.Equal(t, filepath.Join("docs", "..", "_build"), base.PagesDir)
	assert.Empty(t, base.PackageDir)
	assert.True(t, base.Force)
	assert.False(t, base.Options.Strict)

	assert.Equal(t, filepath.Join("docs", "out"), changed.BuildDir)
	assert.Equal(t, filepath.FromSlash("/srv/pages"), changed.PagesDir)
	assert.Equal(t, filepath.Join("src", "pkg"), changed.PackageDir)
	assert.False(t, changed.Force)
	assert.True(t, changed.Options.Strict)
}
