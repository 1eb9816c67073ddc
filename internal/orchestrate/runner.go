package orchestrate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/apidoc"
	"go.abhg.dev/docmake/internal/narrative"
	"go.abhg.dev/docmake/internal/publish"
	"go.abhg.dev/docmake/internal/pysrc"
	"go.abhg.dev/docmake/internal/site"
	"go.abhg.dev/docmake/internal/watch"
)

// SiteBuilder builds a documentation site.
type SiteBuilder interface {
	Build(context.Context, *site.Request) (*site.Artifact, error)
}

var _ SiteBuilder = (*site.Builder)(nil)

// Runner runs targets.
type Runner struct {
	Log *log.Logger // required

	// Stdout receives the help listing.
	Stdout io.Writer // required

	// DebugLog receives verbose output about package traversal.
	DebugLog *log.Logger

	// Builder defaults to a site.Builder logging to Log.
	Builder SiteBuilder

	// Getenv looks up the CI environment for the publish target.
	// Defaults to os.Getenv.
	Getenv func(string) string

	// Groups holds deploy groups shared by publish runs.
	// Defaults to an empty set.
	Groups *publish.Groups

	// Debounce of the watch target.
	Debounce time.Duration
}

// Run runs targets in order against plan.
// The first failing step stops the run and its error is returned.
// Artifacts of the steps that ran are returned in order.
func (r *Runner) Run(ctx context.Context, plan Plan, targets ...Target) ([]*Artifact, error) {
	if len(targets) == 0 {
		targets = []Target{{Kind: HelpTarget}}
	}

	var arts []*Artifact
	for _, t := range targets {
		for _, step := range plan.Steps(t) {
			if step.Kind != HelpStep && plan.Config == nil {
				cfg, err := narrative.LoadConfig(plan.SourceDir)
				if err != nil {
					return arts, errtrace.Wrap(err)
				}
				plan = plan.WithConfig(cfg)
			}

			art, err := r.runStep(ctx, plan, step)
			if err != nil {
				return arts, errtrace.Wrap(fmt.Errorf("%v: %w", t, err))
			}
			arts = append(arts, art)
		}
	}
	return arts, nil
}

func (r *Runner) runStep(ctx context.Context, plan Plan, step Step) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, errtrace.Wrap(err)
	}

	switch step.Kind {
	case HelpStep:
		return r.help(step)
	case CleanStep:
		return r.clean(plan, step)
	case ExtractStep:
		return r.extract(ctx, plan, step)
	case BuildStep:
		return r.build(ctx, plan, step)
	case NoJekyllStep:
		return r.noJekyll(step)
	case AnnounceStep:
		r.Log.Printf("Build finished. The HTML pages are in %v.", step.Dir)
		return &Artifact{Step: step, Dir: step.Dir}, nil
	case PublishStep:
		return r.publish(ctx, plan, step)
	case WatchStep:
		return r.watch(ctx, plan, step)
	default:
		return nil, errtrace.Wrap(fmt.Errorf("unknown step %v", step))
	}
}

func (r *Runner) help(step Step) (*Artifact, error) {
	w := tabwriter.NewWriter(r.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Please use `docmake <target>` where <target> is one of")
	for _, t := range Targets {
		fmt.Fprintf(w, "  %v\t%v\n", t.Name, t.Description)
	}
	fmt.Fprintln(w, "Any other target is passed to the site builder as a mode:")
	for _, m := range site.Modes {
		if m == site.HelpMode {
			continue
		}
		fmt.Fprintf(w, "  %v\t%v\n", m, m.Description())
	}
	if err := w.Flush(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Artifact{Step: step}, nil
}

func (r *Runner) clean(plan Plan, step Step) (*Artifact, error) {
	removed, err := apidoc.Clean(plan.SourceDir, plan.Config.APIDoc.Pattern)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	r.Log.Printf("Removed %d descriptor files from %v.", len(removed), plan.SourceDir)
	return &Artifact{Step: step, Dir: plan.SourceDir, Files: removed}, nil
}

func (r *Runner) extract(ctx context.Context, plan Plan, step Step) (*Artifact, error) {
	cfg := plan.Config
	pkgDir := plan.PackageDir
	if len(pkgDir) == 0 {
		var err error
		pkgDir, err = cfg.PackageDir(plan.SourceDir)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	e := apidoc.Extractor{
		Log: r.Log,
		Finder: &pysrc.Finder{
			ImplicitNamespaces: cfg.APIDoc.ImplicitNamespaces,
			Private:            cfg.APIDoc.Private,
			Exclude:            cfg.APIDoc.Exclude,
			DebugLog:           r.DebugLog,
		},
		Parser: new(pysrc.Parser),
		Assembler: &apidoc.Assembler{
			ModuleFirst:     cfg.APIDoc.ModuleFirst,
			SeparateClasses: cfg.APIDoc.SeparateClasses,
			Private:         cfg.APIDoc.Private,
		},
		Force: plan.Force,
	}
	res, err := e.Extract(ctx, pkgDir, plan.SourceDir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Artifact{Step: step, Dir: plan.SourceDir, Files: res.Written}, nil
}

func (r *Runner) build(ctx context.Context, plan Plan, step Step) (*Artifact, error) {
	b := r.Builder
	if b == nil {
		b = &site.Builder{Log: r.Log}
	}

	mode, err := site.ParseMode(string(step.Mode))
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	art, err := b.Build(ctx, &site.Request{
		SourceDir: plan.SourceDir,
		OutDir:    step.Dir,
		Mode:      mode,
		Config:    plan.Config,
		Options:   plan.Options,
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Artifact{Step: step, Dir: art.Dir, Files: art.Pages}, nil
}

func (r *Runner) noJekyll(step Step) (*Artifact, error) {
	if err := os.WriteFile(filepath.Join(step.Dir, NoJekyllFile), nil, 0o644); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Artifact{Step: step, Dir: step.Dir, Files: []string{NoJekyllFile}}, nil
}

// runSteps runs steps in order, discarding their artifacts.
func (r *Runner) runSteps(ctx context.Context, plan Plan, steps ...Step) error {
	for _, step := range steps {
		if _, err := r.runStep(ctx, plan, step); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, plan Plan, step Step) (*Artifact, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	groups := r.Groups
	if groups == nil {
		groups = new(publish.Groups)
	}

	ev, err := publish.DetectEvent(getenv, plan.SourceDir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	cfg := plan.Config.Publish
	var deployer publish.Deployer
	if len(cfg.DeployCommand) > 0 {
		deployer = &publish.CommandDeployer{
			Log:     r.Log,
			Command: cfg.DeployCommand,
			Dir:     plan.SourceDir,
		}
	} else {
		dir := filepath.Join(plan.BuildDir, "deploy")
		if len(cfg.DeployDir) > 0 {
			dir = plan.resolve(cfg.DeployDir)
		}
		deployer = &publish.DirDeployer{Dir: dir}
	}

	siteSteps := []Step{
		{Kind: BuildStep, Mode: site.HTMLMode, Dir: plan.PagesDir},
		{Kind: NoJekyllStep, Dir: plan.PagesDir},
	}
	p := publish.Publisher{
		Log:     r.Log,
		WorkDir: plan.SourceDir,
		Install: cfg.Install,
		Regenerate: func(ctx context.Context) error {
			return r.runSteps(ctx, plan.WithForce(true), Step{Kind: CleanStep}, Step{Kind: ExtractStep})
		},
		Build: func(ctx context.Context) (string, error) {
			if err := r.runSteps(ctx, plan, siteSteps...); err != nil {
				return "", errtrace.Wrap(err)
			}
			return plan.PagesDir, nil
		},
		PrimaryBranches: cfg.PrimaryBranches,
		Group:           groups.Get(cfg.Group),
		ArtifactDir:     filepath.Join(plan.BuildDir, "artifacts"),
		Deployer:        deployer,
	}

	res, err := p.Publish(ctx, ev)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	art := Artifact{Step: step, Dir: plan.PagesDir}
	if res.Artifact != nil {
		art.Files = []string{res.Artifact.Path}
	}
	if res.State == publish.StateNoPublish {
		r.Log.Printf("Not publishing %v: only pushes to %v are deployed.", ev, cfg.PrimaryBranches)
	}
	return &art, nil
}

func (r *Runner) watch(ctx context.Context, plan Plan, step Step) (*Artifact, error) {
	rebuild := []Step{
		{Kind: ExtractStep},
		{Kind: BuildStep, Mode: site.HTMLMode, Dir: plan.ModeDir(site.HTMLMode)},
	}
	plan = plan.WithForce(true)
	if err := r.runSteps(ctx, plan, rebuild...); err != nil {
		return nil, errtrace.Wrap(err)
	}

	dirs := []string{plan.SourceDir}
	pkgDir := plan.PackageDir
	if len(pkgDir) == 0 {
		if dir, err := plan.Config.PackageDir(plan.SourceDir); err == nil {
			pkgDir = dir
		}
	}
	if len(pkgDir) > 0 {
		dirs = append(dirs, pkgDir)
	}

	pattern := plan.Config.APIDoc.Pattern
	if len(pattern) == 0 {
		pattern = apidoc.DefaultPattern
	}
	w := watch.Watcher{
		Log:        r.Log,
		Dirs:       dirs,
		Ignore:     []string{pattern, apidoc.ManifestFile},
		IgnoreDirs: []string{plan.BuildDir, plan.PagesDir},
		Debounce:   r.Debounce,
	}
	err := w.Watch(ctx, func(ctx context.Context, _ []string) error {
		// Configuration may have changed too.
		cfg, err := narrative.LoadConfig(plan.SourceDir)
		if err != nil {
			return errtrace.Wrap(err)
		}
		return r.runSteps(ctx, plan.WithConfig(cfg), rebuild...)
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Artifact{Step: step, Dir: plan.ModeDir(site.HTMLMode)}, nil
}
