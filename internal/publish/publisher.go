package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"braces.dev/errtrace"
)

// Publisher runs the publish pipeline for a single event.
type Publisher struct {
	Log *log.Logger // required

	// WorkDir is the directory install commands run in.
	WorkDir string

	// Install lists commands that install build dependencies.
	Install [][]string

	// Regenerate rebuilds the API descriptors from scratch.
	Regenerate func(context.Context) error

	// Build builds the site and returns the directory holding it.
	Build func(context.Context) (string, error)

	// PrimaryBranches are the branches whose pushes are deployed.
	PrimaryBranches []string

	// Group serializes deployments.
	// Runs that share a Group never package or deploy at the same time.
	Group *Group

	// ArtifactDir is where artifacts are written.
	// Defaults to a temporary directory.
	ArtifactDir string

	Deployer Deployer

	// Observe, if set, is called on entering every state.
	Observe func(State)
}

// Result reports how far a run got.
type Result struct {
	Event *Event

	// State is the last state the run reached.
	State State

	// Artifact is set once the site has been packaged.
	Artifact *Artifact
}

// Publish takes ev through the pipeline.
//
// A failing stage stops the run:
// the returned Result holds the last state reached,
// and no later stage runs.
// Pull requests and pushes to other branches build the site
// and finish in StateNoPublish without packaging.
func (p *Publisher) Publish(ctx context.Context, ev *Event) (_ *Result, err error) {
	res := &Result{Event: ev}
	enter := func(s State) {
		res.State = s
		p.Log.Printf("[%v] %v", ev.RunID, s)
		if p.Observe != nil {
			p.Observe(s)
		}
	}

	enter(StatePushReceived)
	p.Log.Printf("[%v] event: %v", ev.RunID, ev)

	for _, args := range p.Install {
		if err := runCommand(ctx, p.Log, p.WorkDir, args); err != nil {
			return res, errtrace.Wrap(fmt.Errorf("install dependencies: %w", err))
		}
	}
	enter(StateDependenciesInstalled)

	if p.Regenerate != nil {
		if err := p.Regenerate(ctx); err != nil {
			return res, errtrace.Wrap(fmt.Errorf("regenerate descriptors: %w", err))
		}
	}
	enter(StateDescriptorsRegenerated)

	siteDir, err := p.Build(ctx)
	if err != nil {
		return res, errtrace.Wrap(fmt.Errorf("build site: %w", err))
	}
	enter(StateSiteBuilt)

	if ev.Kind != PushEvent || !IsPrimary(ev.Branch, p.PrimaryBranches) {
		enter(StateNoPublish)
		return res, nil
	}

	group := p.Group
	if group == nil {
		group = new(Group)
	}
	if n := group.Waiting(); n > 0 {
		p.Log.Printf("[%v] waiting for %d runs to deploy", ev.RunID, n)
	}
	release, err := group.Acquire(ctx)
	if err != nil {
		return res, errtrace.Wrap(fmt.Errorf("wait for deploy group: %w", err))
	}
	defer release()

	artDir := p.ArtifactDir
	if len(artDir) == 0 {
		artDir, err = os.MkdirTemp("", "docmake-artifact-")
		if err != nil {
			return res, errtrace.Wrap(err)
		}
		defer func() {
			_ = os.RemoveAll(artDir)
		}()
	}

	art, err := Pack(siteDir, filepath.Join(artDir, artifactName(ev)))
	if err != nil {
		return res, errtrace.Wrap(fmt.Errorf("upload artifact: %w", err))
	}
	res.Artifact = art
	enter(StateArtifactUploaded)
	p.Log.Printf("[%v] artifact %v: %d files, sha256 %v", ev.RunID, art.Path, art.Files, art.SHA256)

	if p.Deployer == nil {
		return res, errtrace.Wrap(errors.New("deploy: no deployer configured"))
	}
	if err := p.Deployer.Deploy(ctx, art); err != nil {
		return res, errtrace.Wrap(fmt.Errorf("deploy: %w", err))
	}
	enter(StateDeployed)
	return res, nil
}
