package flagvalue

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"braces.dev/errtrace"
)

// _stdSwitch is the value stored when a FileSwitch
// is passed without a path.
const _stdSwitch = "-"

// FileSwitch is an optional output destination.
// It accepts "-x", "-x=path", and boolean values
// so that it may also be set from an environment variable
// like DOCS_DEBUG=1 or DOCS_DEBUG=false.
//
// The zero value is off.
type FileSwitch string

var _ flag.Getter = (*FileSwitch)(nil)

// Get returns the destination path,
// "-" for the fallback writer, or "" if unset.
func (fs *FileSwitch) Get() any { return string(*fs) }

func (fs *FileSwitch) String() string {
	if fs == nil {
		return ""
	}
	return string(*fs)
}

// IsBoolFlag allows the flag to be passed without a value.
func (*FileSwitch) IsBoolFlag() bool { return true }

// Set parses a path or a boolean.
// True values select the fallback writer,
// and false values turn the switch off.
func (fs *FileSwitch) Set(v string) error {
	if b, err := strconv.ParseBool(v); err == nil {
		if b {
			*fs = _stdSwitch
		} else {
			*fs = ""
		}
		return nil
	}
	*fs = FileSwitch(v)
	return nil
}

// Bool reports whether the switch is on.
func (fs *FileSwitch) Bool() bool {
	return len(*fs) > 0
}

// Create opens the destination of the switch.
// The returned function releases it.
//
//   - off: [io.Discard]
//   - on without a path: fallback
//   - on with a path: the newly created file
func (fs *FileSwitch) Create(fallback io.Writer) (w io.Writer, closeFn func() error, err error) {
	switch *fs {
	case "":
		return io.Discard, nopClose, nil
	case _stdSwitch:
		return fallback, nopClose, nil
	}

	f, err := os.Create(string(*fs))
	if err != nil {
		return nil, nil, errtrace.Wrap(fmt.Errorf("open %v: %w", string(*fs), err))
	}
	return f, f.Close, nil
}

func nopClose() error { return nil }

// Logger builds a logger on top of [FileSwitch.Create].
// It discards everything unless the switch is on.
func (fs *FileSwitch) Logger(fallback io.Writer) (_ *log.Logger, closeFn func() error, err error) {
	w, closeFn, err := fs.Create(fallback)
	if err != nil {
		return nil, nil, errtrace.Wrap(err)
	}
	return log.New(w, "", 0), closeFn, nil
}
