package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/linebuf"
)

// runCommand runs args in dir,
// logging every line of output with a prefix naming the command.
func runCommand(ctx context.Context, logger *log.Logger, dir string, args []string) (err error) {
	if len(args) == 0 {
		return errtrace.Wrap(errors.New("empty command"))
	}

	stdout := linebuf.Logger(logger, args[0])
	defer stdout.Flush()
	stderr := linebuf.Logger(logger, args[0])
	defer stderr.Flush()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return errtrace.Wrap(fmt.Errorf("%v: %w", strings.Join(args, " "), err))
	}
	return nil
}
