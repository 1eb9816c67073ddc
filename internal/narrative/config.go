// Package narrative loads the hand-written side of a documentation site:
// the site configuration and the Markdown pages listed in its navigation.
package narrative

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"braces.dev/errtrace"
	"github.com/BurntSushi/toml"
	"go.abhg.dev/docmake/internal/errdefer"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the site configuration file
// in the source directory.
const ConfigFile = "docs.yaml"

// Config is the site configuration.
type Config struct {
	Project   string `yaml:"project"`
	Author    string `yaml:"author"`
	Copyright string `yaml:"copyright"`
	Release   string `yaml:"release"`

	// PyProject is the path to a pyproject.toml,
	// relative to the source directory.
	// Its [project] table fills in Project and Release when unset.
	PyProject string `yaml:"pyproject"`

	// Package is the path to the Python package root,
	// relative to the source directory.
	Package string `yaml:"package"`

	// Nav lists page names in navigation order.
	// Each name refers to <name>.md in the source directory.
	Nav []string `yaml:"nav"`

	// Style is the name of the Chroma style for code blocks.
	Style string `yaml:"style"`

	APIDoc  APIDocConfig  `yaml:"apidoc"`
	Publish PublishConfig `yaml:"publish"`
}

// APIDocConfig configures descriptor extraction.
type APIDocConfig struct {
	ModuleFirst        bool     `yaml:"module_first"`
	SeparateClasses    bool     `yaml:"separate_classes"`
	Private            bool     `yaml:"private"`
	ImplicitNamespaces bool     `yaml:"implicit_namespaces"`
	Exclude            []string `yaml:"exclude"`

	// Pattern matches descriptor files removed by clean-apidoc.
	Pattern string `yaml:"pattern"`
}

// PublishConfig configures the CI publisher.
type PublishConfig struct {
	// PrimaryBranches are the branches whose pushes get deployed.
	PrimaryBranches []string `yaml:"primary_branches"`

	// Install lists commands that install build dependencies.
	// Each command is an argument list.
	Install [][]string `yaml:"install"`

	// Group names the deploy concurrency group.
	Group string `yaml:"group"`

	// DeployDir is the directory the site is deployed into,
	// relative to the source directory.
	DeployDir string `yaml:"deploy_dir"`

	// DeployCommand is run with the artifact path appended
	// instead of deploying to DeployDir.
	DeployCommand []string `yaml:"deploy_command"`
}

// DefaultConfig returns the configuration used
// for anything not set in docs.yaml.
func DefaultConfig() *Config {
	return &Config{
		Nav:   []string{"index"},
		Style: "plain",
		APIDoc: APIDocConfig{
			ModuleFirst: true,
			Pattern:     "*.apidoc.yaml",
		},
		Publish: PublishConfig{
			PrimaryBranches: []string{"main", "master"},
			Group:           "pages",
		},
	}
}

// APIPage is the page name reserved for the API reference.
// It can't be used for a narrative page.
const APIPage = "api"

// LoadConfig reads docs.yaml from the source directory
// on top of DefaultConfig.
// A missing docs.yaml is not an error.
func LoadConfig(sourceDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(sourceDir, ConfigFile)
	if err := decodeYAMLFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errtrace.Wrap(&ConfigError{Path: path, Err: err})
		}
	}

	if len(cfg.PyProject) > 0 {
		path := filepath.Join(sourceDir, cfg.PyProject)
		meta, err := readPyProject(path)
		if err != nil {
			return nil, errtrace.Wrap(&ConfigError{Path: path, Err: err})
		}
		if len(cfg.Project) == 0 {
			cfg.Project = meta.Name
		}
		if len(cfg.Release) == 0 {
			cfg.Release = meta.Version
		}
		if len(cfg.Author) == 0 && len(meta.Authors) > 0 {
			cfg.Author = meta.Authors[0].Name
		}
	}

	if len(cfg.Nav) == 0 {
		return nil, errtrace.Wrap(&ConfigError{Path: path, Err: errors.New("nav must list at least one page")})
	}
	seen := make(map[string]struct{}, len(cfg.Nav))
	for _, name := range cfg.Nav {
		if len(name) == 0 || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			return nil, errtrace.Wrap(&ConfigError{Path: path, Err: fmt.Errorf("bad page name %q", name)})
		}
		if name == APIPage {
			return nil, errtrace.Wrap(&ConfigError{Path: path, Err: fmt.Errorf("page name %q is reserved for the API reference", name)})
		}
		if _, ok := seen[name]; ok {
			return nil, errtrace.Wrap(&ConfigError{Path: path, Err: fmt.Errorf("page %q listed twice", name)})
		}
		seen[name] = struct{}{}
	}

	return cfg, nil
}

// Set overrides a single metadata value by name.
// Only project, release, author, and copyright may be set.
func (c *Config) Set(key, value string) error {
	switch key {
	case "project":
		c.Project = value
	case "release", "version":
		c.Release = value
	case "author":
		c.Author = value
	case "copyright":
		c.Copyright = value
	default:
		return errtrace.Wrap(fmt.Errorf("unknown setting %q", key))
	}
	return nil
}

// PackageDir returns the path to the Python package root.
//
// If Package is unset, it looks for a directory named after the project
// next to the source directory, or under ../src.
func (c *Config) PackageDir(sourceDir string) (string, error) {
	if len(c.Package) > 0 {
		if filepath.IsAbs(c.Package) {
			return c.Package, nil
		}
		return filepath.Join(sourceDir, c.Package), nil
	}

	name := strings.ReplaceAll(strings.ToLower(c.Project), "-", "_")
	if len(name) == 0 {
		return "", errtrace.Wrap(&ConfigError{
			Path: filepath.Join(sourceDir, ConfigFile),
			Err:  errors.New("package is not set and there is no project name to guess it from"),
		})
	}

	candidates := []string{
		filepath.Join(sourceDir, "..", "src", name),
		filepath.Join(sourceDir, "..", name),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", errtrace.Wrap(&ConfigError{
		Path: candidates[0],
		Err:  fmt.Errorf("package %v not found; set 'package' in %v", name, ConfigFile),
	})
}

type pyProject struct {
	Project pyProjectMeta `toml:"project"`
}

type pyProjectMeta struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Authors []struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	} `toml:"authors"`
}

func readPyProject(path string) (*pyProjectMeta, error) {
	var p pyProject
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &p.Project, nil
}

func decodeYAMLFile(path string, dst any) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		// Empty file.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errtrace.Wrap(err)
	}
	return nil
}
