package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"go.abhg.dev/docmake/internal/flagvalue"
)

// _envPrefix is the prefix of environment variables
// that set flags: DOCS_BUILDDIR sets -builddir.
const _envPrefix = "DOCS"

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// params holds all arguments for docmake.
type params struct {
	version bool
	help    Help
	config  string

	SourceDir      string
	BuildDir       string
	PagesDir       string
	PackageDir     string
	BuilderOptions string
	Force          bool

	Debug flagvalue.FileSwitch

	Targets []string

	// Getenv looks up variables in the process environment,
	// falling back to the .env file of the source directory.
	Getenv func(string) string
}

// cliParser parses the command line arguments for docmake.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	flag := flag.NewFlagSet("docmake", flag.ContinueOnError)
	flag.SetOutput(cmd.Stderr)
	flag.Usage = func() {
		_ = DefaultHelp.Write(cmd.Stderr)
	}

	var p params

	// Filesystem:
	flag.StringVar(&p.SourceDir, "C", ".", "")
	flag.StringVar(&p.BuildDir, "builddir", "", "")
	flag.StringVar(&p.PagesDir, "pagesdir", "", "")
	flag.StringVar(&p.PackageDir, "package", "", "")

	// Build:
	flag.StringVar(&p.BuilderOptions, "opts", "", "")
	flag.BoolVar(&p.Force, "force", true, "")

	// Program-level:
	flag.StringVar(&p.config, "config", "", "")
	flag.Var(&p.Debug, "debug", "")
	flag.BoolVar(&p.version, "version", false, "")
	flag.Var(&p.help, "help", "")
	flag.Var(&p.help, "h", "")

	return &p, flag
}

func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, fset := cmd.newFlagSet()
	err := ff.Parse(fset, args,
		ff.WithEnvVarPrefix(_envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, err
	}
	args = fset.Args()

	if p.version {
		fmt.Fprintln(cmd.Stdout, "docmake", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h foo"
		// instead of "-h=foo".
		// If the argument is a known help topic,
		// take it.
		var h Help
		if err := h.Set(args[0]); err == nil && h.Known() {
			p.help = h
		}
	}

	switch p.help {
	case NoHelp:
		// proceed as usual
	default:
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	dotenv, err := readDotEnv(p.SourceDir)
	if err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		_ = UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}
	if err := applyDotEnv(fset, dotenv); err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		return nil, errInvalidArguments
	}

	getenv := cmd.Getenv
	p.Getenv = func(k string) string {
		if v := getenv(k); len(v) > 0 {
			return v
		}
		return dotenv[k]
	}

	p.Targets = args
	return p, nil
}

// readDotEnv reads the .env file in dir, if any.
func readDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %v: %w", path, err)
	}
	return env, nil
}

// applyDotEnv sets flags that weren't set on the command line,
// in the environment, or in a config file
// from DOCS_* variables in env.
func applyDotEnv(fset *flag.FlagSet, env map[string]string) error {
	if len(env) == 0 {
		return nil
	}

	set := make(map[string]struct{})
	fset.Visit(func(f *flag.Flag) {
		set[f.Name] = struct{}{}
	})

	var errs []error
	fset.VisitAll(func(f *flag.Flag) {
		if _, ok := set[f.Name]; ok {
			return
		}
		key := _envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		v, ok := env[key]
		if !ok {
			return
		}
		if err := fset.Set(f.Name, v); err != nil {
			errs = append(errs, fmt.Errorf(".env: %v: %w", key, err))
		}
	})
	return errors.Join(errs...)
}
