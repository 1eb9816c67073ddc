// Package flagvalue provides flag.Value implementations.
package flagvalue

import (
	"flag"
	"fmt"
	"strings"

	"braces.dev/errtrace"
)

// Getter is a constraint satisfied by pointers to types
// which implement flag.Getter.
type Getter[T any] interface {
	*T
	flag.Getter
}

// List is a flag that may be repeated.
// Every occurrence is parsed by T's Set method
// and appended in the order given on the command line.
type List[T any, PT Getter[T]] []T

// ListOf returns a flag that appends to vs.
//
//	fset.Var(flagvalue.ListOf(&overrides), "D", ...)
func ListOf[T any, PT Getter[T]](vs *[]T) *List[T, PT] {
	return (*List[T, PT])(vs)
}

// Get returns the values parsed so far as a []T.
func (lv *List[T, PT]) Get() any { return []T(*lv) }

// String formats the values as space-separated flag arguments.
func (lv *List[T, PT]) String() string {
	if lv == nil {
		return ""
	}
	parts := make([]string, len(*lv))
	for i := range *lv {
		parts[i] = PT(&(*lv)[i]).String()
	}
	return strings.Join(parts, " ")
}

// Set parses one occurrence of the flag.
func (lv *List[T, PT]) Set(s string) error {
	var v T
	if err := PT(&v).Set(s); err != nil {
		return errtrace.Wrap(fmt.Errorf("item %d: %w", len(*lv)+1, err))
	}
	*lv = append(*lv, v)
	return nil
}
