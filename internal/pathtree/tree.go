// Package pathtree provides a data structure
// that stores values organized under dotted names,
// such as Python module paths,
// where values from higher levels cascade down to lower levels
// unless the lower levels define their own values.
//
// For example, if 'rsoft_cad.lantern' defines a value X,
// rsoft_cad.lantern and all its descendants inherit this value.
//
//	t.Set("rsoft_cad.lantern", X)
//	t.Lookup("rsoft_cad.lantern")                 // == X
//	t.Lookup("rsoft_cad.lantern.PhotonicLantern") // == X
//
// However, if 'rsoft_cad.lantern.base_lantern' defines a value Y,
// it and its descendants use that value.
//
//	t.Set("rsoft_cad.lantern", X)
//	t.Set("rsoft_cad.lantern.base_lantern", Y)
//	t.Lookup("rsoft_cad.lantern.fiber_config")             // == X
//	t.Lookup("rsoft_cad.lantern.base_lantern.BaseLantern") // == Y
//
// Cross-references to members of a module resolve this way
// to the page that documents the module.
package pathtree

import (
	"sort"
	"strings"
)

const _sep = '.'

// Root is the starting point of the tree.
// The zero-value of Root is an empty tree.
type Root[T any] struct {
	root node[T]
}

// Set adds a value to the tree under the given name.
// All descendants of this name that do not have an explicit value
// will inherit this value.
// If this name already had a value specified, it will be overwritten.
func (r *Root[T]) Set(name string, v T) {
	r.root.Set(name, &v)
}

// Lookup retrieves the value for the given name,
// inheriting values specified for parents of this name
// if it didn't get its own value.
//
// Lookup reports true if a value was found--even if it was inherited.
func (r *Root[T]) Lookup(name string) (v T, ok bool) {
	if got := r.root.Get(name, nil); got != nil {
		v = *got
		ok = true
	}
	return v, ok
}

// Snapshot is a snapshot of values added to the tree
// presented in a hierarchical manner.
type Snapshot[T any] struct {
	// Value in the tree,
	// or nil if this node doesn't have an explicit value.
	// Implicit namespace packages show up this way.
	Value *T

	// Name is the full dotted name of this node.
	Name string

	// Children of this node, sorted by name.
	Children []Snapshot[T]
}

// Base is the last component of this node's name.
func (s *Snapshot[T]) Base() string {
	if idx := strings.LastIndexByte(s.Name, _sep); idx >= 0 {
		return s.Name[idx+1:]
	}
	return s.Name
}

// Snapshot builds and returns a snapshot of all values
// in this tree.
//
// The returned slice holds nodes closest to root.
func (r *Root[T]) Snapshot() []Snapshot[T] {
	return r.root.Snapshot(nil).Children
}

type node[T any] struct {
	value    *T
	children map[string]*node[T]
}

func (n *node[T]) ensurechild(name string) *node[T] {
	if n.children == nil {
		n.children = make(map[string]*node[T])
	}

	c, ok := n.children[name]
	if !ok {
		c = new(node[T])
		n.children[name] = c
	}
	return c
}

func (n *node[T]) Set(name string, v *T) {
	if len(name) == 0 {
		n.value = v
		return
	}

	head, tail := split(name)
	n.ensurechild(head).Set(tail, v)
}

func (n *node[T]) Get(name string, current *T) (final *T) {
	if n == nil {
		return current
	}

	if n.value != nil {
		current = n.value
	}

	if len(name) == 0 {
		return current
	}

	head, tail := split(name)
	return n.children[head].Get(tail, current)
}

func (n *node[T]) Snapshot(parts []string) Snapshot[T] {
	var children []Snapshot[T]
	if len(n.children) > 0 {
		childNames := make([]string, 0, len(n.children))
		for name := range n.children {
			childNames = append(childNames, name)
		}
		sort.Strings(childNames)

		children = make([]Snapshot[T], len(childNames))
		for i, name := range childNames {
			// Clip so that siblings don't share the backing array.
			childParts := append(parts[:len(parts):len(parts)], name)
			children[i] = n.children[name].Snapshot(childParts)
		}
	}

	return Snapshot[T]{
		Value:    n.value,
		Name:     strings.Join(parts, string(_sep)),
		Children: children,
	}
}

func split(name string) (head, tail string) {
	head, tail = name, ""
	if idx := strings.IndexByte(name, _sep); idx >= 0 {
		head, tail = name[:idx], name[idx+1:]
	}
	// Collapse repeated separators.
	for len(tail) > 0 && tail[0] == _sep {
		tail = tail[1:]
	}
	return head, tail
}
