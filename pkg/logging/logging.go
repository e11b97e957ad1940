package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/instl/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fileLevel is the least severe level the log file records whatever the
// verbosity; the console follows the verbosity alone.
const fileLevel = zerolog.InfoLevel

// console filters the console writer by verbosity
var console = &zerolog.FilteredLevelWriter{
	Writer: zerolog.LevelWriterAdapter{Writer: io.Discard},
	Level:  zerolog.WarnLevel,
}

// SetupLogger configures the global logger based on verbosity level
// It sets up dual output to both console and a log file. console is the
// writer for human-readable output, normally the normalized stderr.
func SetupLogger(verbosity int, consoleOut io.Writer) {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        consoleOut,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(consoleOut),
	}
	console.Writer = zerolog.LevelWriterAdapter{Writer: consoleWriter}
	SetLevel(verbosity)

	writers := []io.Writer{console}

	logFile := getLogFilePath()
	logFileHandle, err := setupLogFile(logFile)
	if err == nil {
		writers = append(writers, logFileHandle)
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()

	// If we couldn't create the log file, log the error now with the new logger
	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}

	// Add caller information for debug and trace levels
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// SetLevel sets the console level from a verbosity count. The global
// level never rises above info so the log file keeps info events.
func SetLevel(verbosity int) {
	level := levelFor(verbosity)
	console.Level = level
	if level > fileLevel {
		level = fileLevel
	}
	zerolog.SetGlobalLevel(level)
}

// ConsoleLevel returns the least severe level shown on the console
func ConsoleLevel() zerolog.Level {
	return console.Level
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getLogFilePath returns the path to the log file
// It respects INSTL_STATE_DIR and XDG_STATE_HOME, otherwise uses ~/.local/state/instl/
func getLogFilePath() string {
	p, err := paths.New()
	if err != nil {
		// Fallback to current directory if we can't resolve the state dir
		return paths.LogFileName
	}
	return p.LogFilePath()
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

// LogCommand logs a command execution with its arguments
func LogCommand(cmd string, args []string) {
	log.Debug().
		Str("command", cmd).
		Strs("args", args).
		Msg("Executing command")
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
