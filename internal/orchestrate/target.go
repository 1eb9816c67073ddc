// Package orchestrate runs named build targets.
//
// A [Target] expands into an ordered list of [Step]s
// that run against an immutable [Plan].
// Every step reports what it produced as an [Artifact],
// and the first failing step stops the run.
package orchestrate

import (
	"errors"
	"fmt"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/site"
)

// Kind is the kind of a target.
type Kind int

// Supported targets.
const (
	// HelpTarget lists the available targets and builder modes.
	HelpTarget Kind = iota

	// APIDocTarget writes descriptor files for the package.
	APIDocTarget

	// CleanAPIDocTarget removes descriptor files.
	CleanAPIDocTarget

	// RebuildTarget regenerates descriptors from scratch
	// and builds the HTML site.
	RebuildTarget

	// GHPagesTarget is RebuildTarget with output
	// to the publishing directory.
	GHPagesTarget

	// PublishTarget runs the CI publish pipeline.
	PublishTarget

	// WatchTarget rebuilds whenever sources change.
	WatchTarget

	// PassthroughTarget builds the site in the target's Mode.
	PassthroughTarget
)

var _targetNames = map[string]Kind{
	"help":         HelpTarget,
	"apidoc":       APIDocTarget,
	"clean-apidoc": CleanAPIDocTarget,
	"rebuild":      RebuildTarget,
	"gh-pages":     GHPagesTarget,
	"publish":      PublishTarget,
	"watch":        WatchTarget,
}

// Target is a named build action.
type Target struct {
	Kind Kind

	// Mode is the builder mode of a PassthroughTarget.
	Mode site.Mode
}

// ParseTarget parses the name of a target.
// Names that aren't known targets become passthrough targets
// for the builder mode of the same name.
// The mode is not validated here; the builder rejects unknown modes.
func ParseTarget(name string) (Target, error) {
	if len(name) == 0 {
		return Target{}, errtrace.Wrap(errors.New("empty target name"))
	}
	if k, ok := _targetNames[name]; ok {
		return Target{Kind: k}, nil
	}
	return Target{Kind: PassthroughTarget, Mode: site.Mode(name)}, nil
}

// ParseTargets parses a list of target names.
// An empty list yields the help target.
func ParseTargets(names []string) ([]Target, error) {
	if len(names) == 0 {
		return []Target{{Kind: HelpTarget}}, nil
	}

	targets := make([]Target, len(names))
	for i, name := range names {
		t, err := ParseTarget(name)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		targets[i] = t
	}
	return targets, nil
}

func (t Target) String() string {
	if t.Kind == PassthroughTarget {
		return string(t.Mode)
	}
	for name, k := range _targetNames {
		if k == t.Kind {
			return name
		}
	}
	return fmt.Sprintf("Target(%d)", int(t.Kind))
}

// TargetHelp describes a target for the help listing.
type TargetHelp struct {
	Name        string
	Description string
}

// Targets lists the targets in the order they're documented.
var Targets = []TargetHelp{
	{"help", "to list targets and builder modes (default)"},
	{"apidoc", "to write API descriptors for the package"},
	{"clean-apidoc", "to remove API descriptors"},
	{"rebuild", "to run clean-apidoc, apidoc, and html"},
	{"gh-pages", "to rebuild into the publishing directory"},
	{"publish", "to build, and on primary branch pushes, deploy"},
	{"watch", "to rebuild whenever sources change"},
}
