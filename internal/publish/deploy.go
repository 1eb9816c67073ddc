package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/errdefer"
	"go.abhg.dev/docmake/internal/pathx"
)

// Deployer publishes a packaged site.
type Deployer interface {
	Deploy(ctx context.Context, art *Artifact) error
}

var (
	_ Deployer = (*DirDeployer)(nil)
	_ Deployer = (*CommandDeployer)(nil)
)

// DirDeployer deploys by unpacking the artifact into a directory,
// for example a checkout of a gh-pages branch or a web server root.
// The directory is replaced as a whole.
type DirDeployer struct {
	Dir string
}

// Deploy unpacks art into a temporary sibling of Dir
// and swaps it into place.
func (d *DirDeployer) Deploy(ctx context.Context, art *Artifact) (err error) {
	if err := ctx.Err(); err != nil {
		return errtrace.Wrap(err)
	}

	dir := filepath.Clean(d.Dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return errtrace.Wrap(err)
	}
	tmp, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+"-*")
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.RemoveAllOnError(&err, tmp)
	if err := os.Chmod(tmp, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	if err := Unpack(art.Path, tmp); err != nil {
		return errtrace.Wrap(fmt.Errorf("unpack: %w", err))
	}
	return errtrace.Wrap(pathx.ReplaceDir(tmp, dir))
}

// CommandDeployer deploys by running a command
// with the artifact path as its last argument.
type CommandDeployer struct {
	Log     *log.Logger // required
	Command []string
	Dir     string // working directory
}

// Deploy runs the command.
func (d *CommandDeployer) Deploy(ctx context.Context, art *Artifact) error {
	if len(d.Command) == 0 {
		return errtrace.Wrap(errors.New("no deploy command"))
	}
	args := append(append([]string(nil), d.Command...), art.Path)
	return errtrace.Wrap(runCommand(ctx, d.Log, d.Dir, args))
}
