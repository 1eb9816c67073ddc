// Package apidoc extracts reference page descriptors from a Python package.
//
// A [Descriptor] identifies one documentable unit (a module or a class)
// and lists its members in presentation order.
// Descriptors are written as YAML files alongside the narrative sources
// of a documentation site, one file per descriptor,
// and are regenerated from scratch on every extraction.
package apidoc

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Suffix is the file name suffix of descriptor files.
const Suffix = ".apidoc.yaml"

// DefaultPattern matches all descriptor files in a directory.
const DefaultPattern = "*" + Suffix

// ManifestFile is the name of the file
// listing descriptor files written by the last extraction.
const ManifestFile = ".apidoc-manifest"

// Kind is the kind of documentable unit described by a Descriptor.
type Kind string

// Kinds of descriptors.
const (
	ModuleKind Kind = "module"
	ClassKind  Kind = "class"
)

// MemberKind is the kind of a member listed on a reference page.
type MemberKind string

// Kinds of members.
const (
	FunctionMember MemberKind = "function"
	ClassMember    MemberKind = "class"
	MethodMember   MemberKind = "method"
	PropertyMember MemberKind = "property"
	DataMember     MemberKind = "data"
)

// Descriptor describes a single reference page.
type Descriptor struct {
	// Name is the fully qualified dotted name of the module or class.
	Name string `yaml:"name"`

	Kind Kind `yaml:"kind"`

	// Package reports whether a module descriptor describes a package.
	Package bool `yaml:"package,omitempty"`

	// Source is the path of the defining file
	// relative to the parent of the package root.
	Source string `yaml:"source,omitempty"`

	// Signature of a class descriptor.
	Signature string `yaml:"signature,omitempty"`

	// ModuleFirst records that module-level members
	// were placed before class members.
	ModuleFirst bool `yaml:"module_first"`

	// Doc is the docstring of the module or class.
	Doc string `yaml:"doc,omitempty"`

	// Submodules lists the qualified names of direct submodules
	// of a package.
	Submodules []string `yaml:"submodules,omitempty"`

	// Classes lists the qualified names of class descriptors
	// split out of this module.
	Classes []string `yaml:"classes,omitempty"`

	// Members in presentation order.
	Members []Member `yaml:"members,omitempty"`
}

// FileName is the name of the file this descriptor is stored in.
func (d *Descriptor) FileName() string {
	return d.Name + Suffix
}

// Synopsis is the first paragraph of the docstring as plain text.
// Inline Markdown such as links and emphasis is reduced to its text.
func (d *Descriptor) Synopsis() string {
	para, _, _ := strings.Cut(strings.TrimSpace(d.Doc), "\n\n")
	return strings.Join(strings.Fields(plainText(para)), " ")
}

var _synopsisParser = goldmark.New().Parser()

func plainText(src string) string {
	if !strings.ContainsAny(src, "[]*_`<\\") {
		return src
	}

	source := []byte(src)
	doc := _synopsisParser.Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.AutoLink:
			sb.Write(n.Label(source))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// Title is the heading of the reference page.
func (d *Descriptor) Title() string {
	switch {
	case d.Kind == ClassKind:
		return d.Name + " class"
	case d.Package:
		return d.Name + " package"
	default:
		return d.Name + " module"
	}
}

// Member is a single documented entity on a reference page.
type Member struct {
	// Name relative to the descriptor,
	// for example "BaseLantern" or "BaseLantern.__init__".
	Name string `yaml:"name"`

	Kind MemberKind `yaml:"kind"`

	Signature string `yaml:"signature,omitempty"`

	Doc string `yaml:"doc,omitempty"`

	// Line on which the member is declared, 1-indexed.
	Line int `yaml:"line,omitempty"`
}

// Anchor is the fragment identifier of the member on its page.
func (m *Member) Anchor() string {
	return m.Name
}

func (m Member) String() string {
	return fmt.Sprintf("%v %v", m.Kind, m.Name)
}
