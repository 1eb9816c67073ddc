package site

import (
	"flag"
	"io"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/docmake/internal/flagvalue"
)

// Options are builder options,
// usually given as a single string in the DOCS_OPTS environment variable.
type Options struct {
	// Strict turns warnings into a build failure.
	Strict bool

	// Quiet suppresses informational output.
	// Warnings are still reported.
	Quiet bool

	// Overrides are configuration values set with -D key=value.
	Overrides []flagvalue.KeyValue
}

// ParseOptions parses a builder options string like "-W -D release=1.2".
// An empty string yields the zero Options.
func ParseOptions(s string) (Options, error) {
	var opts Options

	fset := flag.NewFlagSet("opts", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.BoolVar(&opts.Strict, "W", false, "")
	fset.BoolVar(&opts.Quiet, "q", false, "")
	fset.Var(flagvalue.ListOf(&opts.Overrides), "D", "")
	if err := fset.Parse(strings.Fields(s)); err != nil {
		return opts, errtrace.Wrap(err)
	}
	if args := fset.Args(); len(args) > 0 {
		return opts, errtrace.Wrap(&unexpectedArgsError{args: args})
	}
	return opts, nil
}

type unexpectedArgsError struct{ args []string }

func (e *unexpectedArgsError) Error() string {
	return "unexpected builder options: " + strings.Join(e.args, " ")
}

// String reconstructs the options string.
func (o Options) String() string {
	var parts []string
	if o.Strict {
		parts = append(parts, "-W")
	}
	if o.Quiet {
		parts = append(parts, "-q")
	}
	for _, kv := range o.Overrides {
		parts = append(parts, "-D", kv.String())
	}
	return strings.Join(parts, " ")
}
