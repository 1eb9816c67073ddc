package flagvalue

import (
	"flag"
	"fmt"
	"strings"

	"braces.dev/errtrace"
)

// KeyValue is a flag.Getter that accepts values in the form "key=value".
//
// Combine it with [ListOf] to accept it multiple times:
//
//	flag.Var(flagvalue.ListOf(&overrides), "D", ...)
type KeyValue struct {
	Key   string
	Value string
}

var _ flag.Getter = (*KeyValue)(nil)

// Get returns the KeyValue itself.
func (kv *KeyValue) Get() any { return *kv }

// String returns the "key=value" form of this pair.
func (kv *KeyValue) String() string {
	return kv.Key + "=" + kv.Value
}

// Set parses a "key=value" pair.
// The key must be non-empty.
// The value may be empty.
func (kv *KeyValue) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return errtrace.Wrap(fmt.Errorf("expected form 'key=value', got %q", s))
	}
	key = strings.TrimSpace(key)
	if len(key) == 0 {
		return errtrace.Wrap(fmt.Errorf("empty key in %q", s))
	}
	kv.Key = key
	kv.Value = value
	return nil
}
