package main

import (
	_ "embed"
	"flag"
	"fmt"
	"io"
	"strings"

	"braces.dev/errtrace"
)

// Help is the value of the -h/-help flag.
// Passed bare, it requests the default help.
// Passed a topic name, as in "-h targets", it requests that topic.
type Help string

// Help topics.
const (
	NoHelp      Help = ""
	DefaultHelp Help = "default"
	UsageHelp   Help = "usage"
	TargetsHelp Help = "targets"
	ConfigHelp  Help = "config"
)

var (
	//go:embed help/default.txt
	_defaultHelp string

	//go:embed help/targets.txt
	_targetsHelp string

	//go:embed help/config.txt
	_configHelp string

	_usageHelp, _, _ = strings.Cut(_defaultHelp, "\n")
)

// _helpTopics lists topics in the order they're suggested to users.
var _helpTopics = []struct {
	Topic Help
	Body  string
}{
	{DefaultHelp, _defaultHelp},
	{UsageHelp, _usageHelp + "\n"},
	{TargetsHelp, _targetsHelp},
	{ConfigHelp, _configHelp},
}

func (h Help) body() (string, bool) {
	for _, t := range _helpTopics {
		if t.Topic == h {
			return t.Body, true
		}
	}
	return "", false
}

// Known reports whether this is a known help topic.
func (h Help) Known() bool {
	_, ok := h.body()
	return ok
}

// Write writes the help on this topic to w.
// NoHelp writes nothing.
func (h Help) Write(w io.Writer) error {
	if h == NoHelp {
		return nil
	}

	doc, ok := h.body()
	if !ok {
		topics := make([]string, len(_helpTopics))
		for i, t := range _helpTopics {
			topics[i] = string(t.Topic)
		}
		return errtrace.Wrap(fmt.Errorf("unknown help topic %q: valid values are %q", string(h), topics))
	}

	_, err := io.WriteString(w, doc)
	return errtrace.Wrap(err)
}

var _ flag.Getter = (*Help)(nil)

// Get returns the requested topic.
func (h *Help) Get() any { return *h }

// IsBoolFlag allows -h without an argument.
func (*Help) IsBoolFlag() bool { return true }

func (h Help) String() string { return string(h) }

// Set receives a topic name, case-insensitively.
func (h *Help) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "true" {
		s = string(DefaultHelp)
	}
	*h = Help(s)
	return nil
}
