// Package linebuf splits streamed output into lines.
package linebuf

import (
	"bytes"
	"io"
	"log"
	"sync"
)

// Writer calls a function with each complete line written to it.
// Lines are passed with their trailing newline.
// It's safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	onLine  func([]byte)
	partial []byte // unterminated tail of the last write
}

var _ io.Writer = (*Writer)(nil)

// New builds a Writer that reports lines to onLine.
func New(onLine func([]byte)) *Writer {
	return &Writer{onLine: onLine}
}

// Logger builds a Writer that logs each line as its own message.
// Messages are prefixed with "prefix: " if prefix is non-empty.
//
// Hand it to a subprocess as stdout or stderr,
// and Flush it after the subprocess exits.
func Logger(logger *log.Logger, prefix string) *Writer {
	return New(func(line []byte) {
		line = bytes.TrimSuffix(line, []byte{'\n'})
		if len(prefix) == 0 {
			logger.Printf("%s", line)
			return
		}
		logger.Printf("%s: %s", prefix, line)
	})
}

// Write reports every line completed by bs
// and holds on to anything after the last newline.
func (w *Writer) Write(bs []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(bs)
	for {
		idx := bytes.IndexByte(bs, '\n')
		if idx < 0 {
			w.partial = append(w.partial, bs...)
			return n, nil
		}

		line := bs[:idx+1]
		bs = bs[idx+1:]
		if len(w.partial) > 0 {
			line = append(w.partial, line...)
			w.partial = w.partial[:0]
		}
		w.onLine(line)
	}
}

// Flush reports the held partial line, if any.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.partial) > 0 {
		w.onLine(w.partial)
		w.partial = w.partial[:0]
	}
}
