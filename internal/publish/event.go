// Package publish builds and deploys the documentation site from CI.
//
// A [Publisher] takes a triggering [Event] through a fixed sequence of stages:
// dependencies are installed, descriptors regenerated, and the site built.
// Only pushes to a primary branch continue on to packaging
// and deployment; every other run ends in [StateNoPublish].
// Deployments are serialized through a named [Group].
package publish

import (
	"errors"
	"fmt"
	"strings"

	"braces.dev/errtrace"
	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
)

// EventKind is the kind of CI trigger.
type EventKind string

// Supported kinds of events.
const (
	PushEvent        EventKind = "push"
	PullRequestEvent EventKind = "pull_request"
)

// Event is the trigger of a publish run.
type Event struct {
	Kind EventKind

	// Branch that was pushed,
	// or the source branch of a pull request.
	Branch string

	// BaseBranch is the target branch of a pull request.
	BaseBranch string

	// Commit that triggered the run, if known.
	SHA string

	// RunID identifies this run in logs.
	RunID string
}

func (e *Event) String() string {
	if e.Kind == PullRequestEvent {
		return fmt.Sprintf("%v %v -> %v (run %v)", e.Kind, e.Branch, e.BaseBranch, e.RunID)
	}
	return fmt.Sprintf("%v %v (run %v)", e.Kind, e.Branch, e.RunID)
}

// DetectEvent determines the triggering event from GitHub Actions
// environment variables, looked up with getenv.
//
// Outside of CI, the event is a push of the branch checked out
// in the Git repository containing repoDir.
func DetectEvent(getenv func(string) string, repoDir string) (*Event, error) {
	ev := Event{
		SHA:   getenv("GITHUB_SHA"),
		RunID: getenv("GITHUB_RUN_ID"),
	}

	switch name := getenv("GITHUB_EVENT_NAME"); name {
	case "":
		if err := detectLocal(&ev, repoDir); err != nil {
			return nil, errtrace.Wrap(err)
		}

	case "push":
		ev.Kind = PushEvent
		ev.Branch = getenv("GITHUB_REF_NAME")
		if len(ev.Branch) == 0 {
			ev.Branch = strings.TrimPrefix(getenv("GITHUB_REF"), "refs/heads/")
		}

	case "pull_request", "pull_request_target":
		ev.Kind = PullRequestEvent
		ev.Branch = getenv("GITHUB_HEAD_REF")
		ev.BaseBranch = getenv("GITHUB_BASE_REF")

	default:
		return nil, errtrace.Wrap(fmt.Errorf("unsupported event %q", name))
	}

	if len(ev.RunID) == 0 {
		ev.RunID = uuid.NewString()
	}
	return &ev, nil
}

var errDetachedHead = errors.New("HEAD is not on a branch")

func detectLocal(ev *Event, repoDir string) error {
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("open repository: %w", err))
	}

	head, err := repo.Head()
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("resolve HEAD: %w", err))
	}
	if !head.Name().IsBranch() {
		return errtrace.Wrap(errDetachedHead)
	}

	ev.Kind = PushEvent
	ev.Branch = head.Name().Short()
	if len(ev.SHA) == 0 {
		ev.SHA = head.Hash().String()
	}
	return nil
}

// IsPrimary reports whether branch is one of the primary branches.
func IsPrimary(branch string, primary []string) bool {
	for _, b := range primary {
		if b == branch {
			return true
		}
	}
	return false
}
