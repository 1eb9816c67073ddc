// docmake builds documentation sites for Python packages.
//
// It extracts API descriptors from a package without importing it,
// renders them with hand-written Markdown pages into a static site,
// and publishes the site from CI.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/orchestrate"
	"go.abhg.dev/docmake/internal/site"
)

// _version is set at build time with -ldflags "-X main._version=...".
var _version = "dev"

func main() {
	cmd := mainCmd{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
	os.Exit(cmd.Run(os.Args[1:]))
}

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	// Getenv looks up environment variables.
	// Defaults to os.Getenv.
	Getenv func(string) string

	log *log.Logger
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	getenv := cmd.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
		Getenv: getenv,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, errHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, opts); err != nil {
		cmd.log.Printf("docmake: %v", err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(ctx context.Context, opts *params) (err error) {
	debugLog, closeDebug, err := opts.Debug.Logger(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer func() {
		err = errors.Join(err, closeDebug())
	}()

	targets, err := orchestrate.ParseTargets(opts.Targets)
	if err != nil {
		return errtrace.Wrap(err)
	}

	builderOpts, err := site.ParseOptions(opts.BuilderOptions)
	if err != nil {
		return errtrace.Wrap(err)
	}

	plan := orchestrate.NewPlan(opts.SourceDir).
		WithForce(opts.Force).
		WithOptions(builderOpts)
	if len(opts.BuildDir) > 0 {
		plan = plan.WithBuildDir(opts.BuildDir)
	}
	if len(opts.PagesDir) > 0 {
		plan = plan.WithPagesDir(opts.PagesDir)
	}
	if len(opts.PackageDir) > 0 {
		plan = plan.WithPackageDir(opts.PackageDir)
	}
	debugLog.Printf("Plan: %+v", plan)

	runner := orchestrate.Runner{
		Log:      cmd.log,
		Stdout:   cmd.Stdout,
		DebugLog: debugLog,
		Getenv:   opts.Getenv,
	}
	_, err = runner.Run(ctx, plan, targets...)
	return errtrace.Wrap(err)
}
