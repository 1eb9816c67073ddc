// Package iotest routes output produced under test to the test log.
package iotest

import (
	"io"
	"log"
	"strings"
	"testing"
)

// Writer builds an io.Writer that logs to t.
// Each line of a write becomes its own log entry.
func Writer(t testing.TB) io.Writer {
	return tbWriter{t}
}

// Logger builds a log.Logger that logs to t.
func Logger(t testing.TB) *log.Logger {
	return log.New(Writer(t), "", 0)
}

type tbWriter struct{ t testing.TB }

func (w tbWriter) Write(b []byte) (int, error) {
	w.t.Helper()

	for _, line := range strings.Split(strings.TrimSuffix(string(b), "\n"), "\n") {
		w.t.Logf("%s", line)
	}
	return len(b), nil
}
