package orchestrate

import (
	"fmt"
	"path/filepath"

	"go.abhg.dev/docmake/internal/narrative"
	"go.abhg.dev/docmake/internal/site"
)

// DefaultBuildDir is the build directory, relative to the source directory.
const DefaultBuildDir = "_build"

// NoJekyllFile disables Jekyll processing on GitHub Pages.
const NoJekyllFile = ".nojekyll"

// Plan holds everything steps need to run.
//
// Plans are values. Methods that change a plan return a modified copy.
type Plan struct {
	// SourceDir holds docs.yaml, narrative pages, and descriptors.
	SourceDir string

	// PackageDir is the root of the Python package.
	// If empty, it's found from the configuration.
	PackageDir string

	// BuildDir holds one output directory per builder mode.
	BuildDir string

	// PagesDir is the output directory of gh-pages.
	PagesDir string

	// Config is the site configuration.
	// If nil, it's loaded from SourceDir when first needed.
	Config *narrative.Config

	// Options are passed to the site builder.
	Options site.Options

	// Force overwrites existing descriptor files.
	Force bool
}

// NewPlan builds a plan for the given source directory
// with default output directories.
func NewPlan(sourceDir string) Plan {
	return Plan{
		SourceDir: sourceDir,
		BuildDir:  filepath.Join(sourceDir, DefaultBuildDir),
		PagesDir:  filepath.Join(sourceDir, "..", DefaultBuildDir),
		Force:     true,
	}
}

// WithBuildDir returns a copy of p that builds into dir.
// Relative paths are resolved against the source directory.
func (p Plan) WithBuildDir(dir string) Plan {
	p.BuildDir = p.resolve(dir)
	return p
}

// WithPagesDir returns a copy of p that builds gh-pages into dir.
// Relative paths are resolved against the source directory.
func (p Plan) WithPagesDir(dir string) Plan {
	p.PagesDir = p.resolve(dir)
	return p
}

// WithPackageDir returns a copy of p for the package at dir.
// Relative paths are resolved against the source directory.
func (p Plan) WithPackageDir(dir string) Plan {
	p.PackageDir = p.resolve(dir)
	return p
}

// WithConfig returns a copy of p using cfg.
func (p Plan) WithConfig(cfg *narrative.Config) Plan {
	p.Config = cfg
	return p
}

// WithOptions returns a copy of p with the given builder options.
func (p Plan) WithOptions(opts site.Options) Plan {
	p.Options = opts
	return p
}

// WithForce returns a copy of p with Force set.
func (p Plan) WithForce(force bool) Plan {
	p.Force = force
	return p
}

func (p Plan) resolve(dir string) string {
	if len(dir) == 0 || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.SourceDir, dir)
}

// ModeDir is the output directory of the given builder mode.
func (p Plan) ModeDir(m site.Mode) string {
	return filepath.Join(p.BuildDir, string(m))
}

// StepKind is the kind of a step.
type StepKind int

// Kinds of steps.
const (
	HelpStep StepKind = iota
	CleanStep
	ExtractStep
	BuildStep
	NoJekyllStep
	AnnounceStep
	PublishStep
	WatchStep
)

// Step is a single action of a target.
type Step struct {
	Kind StepKind

	// Mode of a BuildStep.
	Mode site.Mode

	// Dir is the output directory of BuildStep,
	// NoJekyllStep, and AnnounceStep.
	Dir string
}

func (s Step) String() string {
	switch s.Kind {
	case HelpStep:
		return "help"
	case CleanStep:
		return "clean-apidoc"
	case ExtractStep:
		return "apidoc"
	case BuildStep:
		return fmt.Sprintf("%v (%v)", s.Mode, s.Dir)
	case NoJekyllStep:
		return "nojekyll"
	case AnnounceStep:
		return "announce"
	case PublishStep:
		return "publish"
	case WatchStep:
		return "watch"
	default:
		return fmt.Sprintf("Step(%d)", int(s.Kind))
	}
}

// Steps expands t into the steps it runs, in order.
func (p Plan) Steps(t Target) []Step {
	switch t.Kind {
	case HelpTarget:
		return []Step{{Kind: HelpStep}}
	case APIDocTarget:
		return []Step{{Kind: ExtractStep}}
	case CleanAPIDocTarget:
		return []Step{{Kind: CleanStep}}
	case RebuildTarget:
		return []Step{
			{Kind: CleanStep},
			{Kind: ExtractStep},
			{Kind: BuildStep, Mode: site.HTMLMode, Dir: p.ModeDir(site.HTMLMode)},
		}
	case GHPagesTarget:
		return []Step{
			{Kind: CleanStep},
			{Kind: ExtractStep},
			{Kind: BuildStep, Mode: site.HTMLMode, Dir: p.PagesDir},
			{Kind: NoJekyllStep, Dir: p.PagesDir},
			{Kind: AnnounceStep, Dir: p.PagesDir},
		}
	case PublishTarget:
		return []Step{{Kind: PublishStep}}
	case WatchTarget:
		return []Step{{Kind: WatchStep}}
	default:
		return []Step{{Kind: BuildStep, Mode: t.Mode, Dir: p.ModeDir(t.Mode)}}
	}
}

// Artifact is what a step produced.
type Artifact struct {
	Step Step

	// Dir is the directory the step wrote to or cleaned, if any.
	Dir string

	// Files lists files the step wrote or removed,
	// relative to Dir.
	Files []string
}
