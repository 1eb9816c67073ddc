package pysrc

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"braces.dev/errtrace"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ItemKind specifies the kind of a documentable item.
type ItemKind int

// Kinds of items found in a module.
const (
	FunctionItem ItemKind = iota + 1 // module-level def
	ClassItem                        // class
	MethodItem                       // def inside a class
	PropertyItem                     // @property inside a class
	DataItem                         // module-level or class-level assignment
)

func (k ItemKind) String() string {
	switch k {
	case FunctionItem:
		return "function"
	case ClassItem:
		return "class"
	case MethodItem:
		return "method"
	case PropertyItem:
		return "property"
	case DataItem:
		return "data"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// Item is a single documentable entity in a module.
type Item struct {
	Kind ItemKind

	// Name of the item, unqualified.
	Name string

	// Signature is the declaration of the item
	// as it should be presented to readers,
	// for example "def create(self, num_cores: int = 7) -> None".
	Signature string

	// Doc is the cleaned up docstring, if any.
	Doc string

	// Line is the 1-indexed line on which the item is declared.
	Line int

	// Members of a class, in source order.
	Members []*Item
}

// Module is a Python module that has been parsed from disk.
type Module struct {
	// Name is the fully qualified name of the module.
	Name string

	// Source is the package-relative path of the module.
	Source string

	// Package reports whether this module is a package.
	Package bool

	// Doc is the module docstring, if any.
	Doc string

	// Items holds top-level items in source order.
	Items []*Item
}

// SyntaxError is returned when a module does not parse.
type SyntaxError struct {
	Path   string
	Line   int // 1-indexed
	Column int // 1-indexed
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%d:%d: invalid syntax", e.Path, e.Line, e.Column)
}

// Parser parses Python source files with tree-sitter.
//
// The zero value is ready to use.
// A Parser is safe for concurrent use
// since every call builds its own tree-sitter parser.
type Parser struct{}

// ParseModule parses the module at the given reference
// and collects its documentable items.
func (*Parser) ParseModule(ref *ModuleRef) (*Module, error) {
	mod := Module{
		Name:    ref.Name,
		Source:  ref.Source,
		Package: ref.Package,
	}
	if ref.Path == "" {
		// Implicit namespace package has no source.
		return &mod, nil
	}

	src, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	if err := parseSource(&mod, ref.Path, src); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &mod, nil
}

// ParseSource parses Python source code held in memory
// into a module with the given name.
// path is used only for error messages.
func (*Parser) ParseSource(name, path string, src []byte) (*Module, error) {
	mod := Module{Name: name, Source: path}
	if err := parseSource(&mod, path, src); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &mod, nil
}

func parseSource(mod *Module, path string, src []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(tree_sitter_python.Language())); err != nil {
		return errtrace.Wrap(fmt.Errorf("load Python grammar: %w", err))
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return errtrace.Wrap(fmt.Errorf("%v: unable to parse", path))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		serr := &SyntaxError{Path: path, Line: 1, Column: 1}
		if bad := firstError(root); bad != nil {
			pos := bad.StartPosition()
			serr.Line = int(pos.Row) + 1
			serr.Column = int(pos.Column) + 1
		}
		return serr
	}

	w := walker{src: src}
	mod.Doc, mod.Items = w.block(root, false)
	return nil
}

// firstError finds the first node in the tree
// that is an error or a missing token.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

type walker struct {
	src []byte
}

func (w *walker) text(n *sitter.Node) string {
	return n.Utf8Text(w.src)
}

// block walks the statements of a module or class body,
// returning the docstring and the items inside it.
func (w *walker) block(body *sitter.Node, inClass bool) (doc string, items []*Item) {
	var (
		last *Item // last data item, to attach attribute docstrings
		seen int   // statements seen so far, ignoring comments
	)
	count := body.NamedChildCount()
	for i := uint(0); i < count; i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || stmt.Kind() == "comment" {
			continue
		}
		seen++

		if s, ok := w.docstring(stmt); ok {
			switch {
			case seen == 1:
				doc = s
			case last != nil && len(last.Doc) == 0:
				last.Doc = s
			}
			last = nil
			continue
		}
		last = nil

		var decorators []string
		def := stmt
		if def.Kind() == "decorated_definition" {
			for j := uint(0); j < def.NamedChildCount(); j++ {
				if c := def.NamedChild(j); c != nil && c.Kind() == "decorator" {
					decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(w.text(c), "@")))
				}
			}
			def = def.ChildByFieldName("definition")
			if def == nil {
				continue
			}
		}

		switch def.Kind() {
		case "function_definition":
			items = append(items, w.function(def, decorators, inClass))
		case "class_definition":
			items = append(items, w.class(def))
		case "expression_statement":
			if item := w.assignment(def); item != nil {
				items = append(items, item)
				last = item
			}
		}
	}
	return doc, items
}

// docstring reports whether the statement is a bare string literal,
// and returns its cleaned up contents if so.
func (w *walker) docstring(stmt *sitter.Node) (string, bool) {
	if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return "", false
	}
	lit := stmt.NamedChild(0)
	if lit == nil {
		return "", false
	}
	switch lit.Kind() {
	case "string":
		return CleanDoc(unquote(w.text(lit))), true
	case "concatenated_string":
		var sb strings.Builder
		for i := uint(0); i < lit.NamedChildCount(); i++ {
			if part := lit.NamedChild(i); part != nil && part.Kind() == "string" {
				sb.WriteString(unquote(w.text(part)))
			}
		}
		return CleanDoc(sb.String()), true
	default:
		return "", false
	}
}

func (w *walker) function(def *sitter.Node, decorators []string, inClass bool) *Item {
	item := Item{
		Kind: FunctionItem,
		Line: int(def.StartPosition().Row) + 1,
	}
	if inClass {
		item.Kind = MethodItem
		for _, d := range decorators {
			if d == "property" || strings.HasSuffix(d, ".setter") || strings.HasPrefix(d, "cached_property") {
				item.Kind = PropertyItem
			}
		}
	}
	if name := def.ChildByFieldName("name"); name != nil {
		item.Name = w.text(name)
	}

	var sig strings.Builder
	for _, d := range decorators {
		sig.WriteString("@")
		sig.WriteString(d)
		sig.WriteString("\n")
	}
	if first := def.Child(0); first != nil && first.Kind() == "async" {
		sig.WriteString("async ")
	}
	sig.WriteString("def ")
	sig.WriteString(item.Name)
	if params := def.ChildByFieldName("parameters"); params != nil {
		sig.WriteString(paramList(w.text(params)))
	} else {
		sig.WriteString("()")
	}
	if ret := def.ChildByFieldName("return_type"); ret != nil {
		sig.WriteString(" -> ")
		sig.WriteString(collapseSpace(w.text(ret)))
	}
	item.Signature = sig.String()

	if body := def.ChildByFieldName("body"); body != nil {
		item.Doc, _ = w.leadingDoc(body)
	}
	return &item
}

func (w *walker) class(def *sitter.Node) *Item {
	item := Item{
		Kind: ClassItem,
		Line: int(def.StartPosition().Row) + 1,
	}
	if name := def.ChildByFieldName("name"); name != nil {
		item.Name = w.text(name)
	}

	sig := "class " + item.Name
	if supers := def.ChildByFieldName("superclasses"); supers != nil {
		sig += collapseSpace(w.text(supers))
	}
	item.Signature = sig

	if body := def.ChildByFieldName("body"); body != nil {
		item.Doc, item.Members = w.block(body, true)
	}
	return &item
}

// leadingDoc returns the docstring of a function body
// without descending into nested definitions.
func (w *walker) leadingDoc(body *sitter.Node) (string, bool) {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || stmt.Kind() == "comment" {
			continue
		}
		return w.docstring(stmt)
	}
	return "", false
}

const _maxValueLen = 60

// assignment turns "NAME = value" and "NAME: T = value" statements
// into data items.
// Tuple unpacking and attribute assignments are ignored.
func (w *walker) assignment(stmt *sitter.Node) *Item {
	if stmt.NamedChildCount() != 1 {
		return nil
	}
	asn := stmt.NamedChild(0)
	if asn == nil || asn.Kind() != "assignment" {
		return nil
	}
	left := asn.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}

	item := Item{
		Kind: DataItem,
		Name: w.text(left),
		Line: int(asn.StartPosition().Row) + 1,
	}

	sig := item.Name
	if typ := asn.ChildByFieldName("type"); typ != nil {
		sig += ": " + collapseSpace(w.text(typ))
	}
	if right := asn.ChildByFieldName("right"); right != nil {
		sig += " = " + truncate(collapseSpace(w.text(right)), _maxValueLen)
	}
	item.Signature = sig
	return &item
}

// collapseSpace joins the whitespace-separated fields of s
// with single spaces,
// flattening multi-line parameter lists into one line.
func collapseSpace(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, " )", ")")
	return s
}

// paramList collapses a parameter list like collapseSpace
// and drops a trailing comma after the last parameter.
func paramList(s string) string {
	s = collapseSpace(s)
	if strings.HasSuffix(s, ",)") {
		s = s[:len(s)-2] + ")"
	}
	return s
}

// truncate shortens s to at most n bytes followed by "...",
// cutting only on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
