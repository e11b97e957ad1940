package streams

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stream is a text stream bound to one file descriptor. Every write is
// sanitized to UTF-8 and handed to the descriptor before Write returns.
// A rune split across two writes is held until its last byte arrives.
type Stream struct {
	mu   sync.Mutex
	name string
	file *os.File
	w    *transform.Writer
	tty  bool
}

func newStream(name string, file *os.File) *Stream {
	fd := file.Fd()
	return &Stream{
		name: name,
		file: file,
		w:    newUTF8Writer(file),
		tty:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// newUTF8Writer decodes its input as UTF-8, replacing invalid sequences
// with U+FFFD. Valid input passes through unchanged.
func newUTF8Writer(file *os.File) *transform.Writer {
	return transform.NewWriter(file, unicode.UTF8.NewDecoder())
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// WriteString implements io.StringWriter.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Flush writes any held partial rune, as U+FFFD, to the descriptor.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Close()
	s.w = newUTF8Writer(s.file)
	return err
}

// Name returns the stream name ("stdout" or "stderr" for process streams).
func (s *Stream) Name() string {
	return s.name
}

// Fd returns the underlying file descriptor.
func (s *Stream) Fd() uintptr {
	return s.file.Fd()
}

// IsTerminal reports whether the descriptor is attached to a terminal.
func (s *Stream) IsTerminal() bool {
	return s.tty
}
