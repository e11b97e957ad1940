package streams

import (
	"os"
	"sync"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Streams holds the normalized OUT and ERR handles of a process.
type Streams struct {
	Out *Stream
	Err *Stream
}

// Flush flushes both streams, returning the first error.
func (s *Streams) Flush() error {
	errOut := s.Out.Flush()
	errErr := s.Err.Flush()
	if errOut != nil {
		return errOut
	}
	return errErr
}

var (
	once       sync.Once
	normalized *Streams
	normErr    error
)

// Normalize reopens os.Stdout and os.Stderr as UTF-8 streams and rebinds
// the global writers of pterm and lipgloss to them. It runs once per
// process; later calls return the first result.
func Normalize() (*Streams, error) {
	once.Do(func() {
		normalized, normErr = NormalizeFiles(os.Stdout, os.Stderr)
		if normErr == nil {
			bindGlobals(normalized)
		}
	})
	return normalized, normErr
}

// NormalizeFiles builds UTF-8 streams on the descriptors of out and errOut.
// The descriptors are checked and, where the platform has one, the console
// output code page is switched to UTF-8. Failure returns an
// ErrStartupEncoding error.
func NormalizeFiles(out, errOut *os.File) (*Streams, error) {
	if err := checkFile("stdout", out); err != nil {
		return nil, err
	}
	if err := checkFile("stderr", errOut); err != nil {
		return nil, err
	}

	if err := setConsoleUTF8(out, errOut); err != nil {
		return nil, errors.Wrap(err, errors.ErrStartupEncoding, "failed to switch console output to UTF-8")
	}

	return &Streams{
		Out: newStream("stdout", out),
		Err: newStream("stderr", errOut),
	}, nil
}

func checkFile(name string, f *os.File) error {
	if f == nil {
		return errors.Newf(errors.ErrStartupEncoding, "%s is not attached", name).
			WithDetail("stream", name)
	}
	if err := checkDescriptor(f); err != nil {
		return errors.Wrapf(err, errors.ErrStartupEncoding, "cannot reopen %s as UTF-8", name).
			WithDetail("stream", name).
			WithDetail("fd", f.Fd())
	}
	return nil
}

// bindGlobals points the libraries that write to the terminal on their own
// at the normalized streams.
func bindGlobals(s *Streams) {
	pterm.SetDefaultOutput(s.Out)
	if !s.Out.IsTerminal() {
		pterm.DisableStyling()
	}
	lipgloss.SetDefaultRenderer(Renderer(s.Out))
}

// Renderer returns a lipgloss renderer for the stream, without colour when
// the stream is not a terminal.
func Renderer(s *Stream) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(s)
	if !s.IsTerminal() {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
