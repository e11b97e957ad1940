package invocation

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/rs/zerolog"
)

// Sink receives the report of a finished invocation
type Sink interface {
	Send(r Report) error
	Close() error
}

// LogSink writes the report as one zerolog event
type LogSink struct {
	Logger zerolog.Logger
}

// NewLogSink creates a LogSink on logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

// Send implements Sink. Panics are logged at error level, other failures
// and successes at info level; the failure message itself has already
// been printed by the command.
func (s *LogSink) Send(r Report) error {
	ev := s.Logger.Info()
	if r.ErrorCode == string(errors.ErrPanic) {
		ev = s.Logger.Error()
	}

	ev = ev.
		Str("id", r.ID).
		Strs("args", r.Args).
		Int("pid", r.PID).
		Str("outcome", r.Outcome).
		Dur("duration", r.Duration).
		Int("exit_code", r.ExitCode)
	if r.Cause != "" {
		ev = ev.Str("cause", r.Cause)
	}
	if r.ErrorCode != "" {
		ev = ev.Str("error_code", r.ErrorCode)
	}
	ev.Msg("Invocation finished")
	return nil
}

// Close implements Sink
func (s *LogSink) Close() error {
	return nil
}

// FileSink appends reports to a JSON-lines history file
type FileSink struct {
	path string
	file *os.File
}

// OpenFileSink creates the parent directories and opens path for appending
func OpenFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
	}

	return &FileSink{path: path, file: f}, nil
}

// Send implements Sink. Each report is one line, written with one call so
// concurrent instl processes do not interleave records.
func (s *FileSink) Send(r Report) error {
	line, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode invocation report")
	}
	line = append(line, '\n')

	if _, err := s.file.Write(line); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to append to %s", s.path)
	}
	return nil
}

// Close implements Sink
func (s *FileSink) Close() error {
	return s.file.Close()
}

// ReadHistory returns the last limit reports of a history file, oldest
// first; limit <= 0 returns all of them. A missing file is an empty
// history. Lines that do not parse are skipped.
func ReadHistory(path string, limit int) ([]Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	var reports []Report
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var r Report
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		reports = append(reports, r)
		if limit > 0 && len(reports) > limit {
			reports = reports[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}

	return reports, nil
}
