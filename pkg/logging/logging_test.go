package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/instl/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name        string
		verbosity   int
		wantConsole zerolog.Level
		wantGlobal  zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel, zerolog.InfoLevel},
		{"info level", 1, zerolog.InfoLevel, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t)

			var console bytes.Buffer
			SetupLogger(tt.verbosity, &console)

			assert.Equal(t, tt.wantConsole, ConsoleLevel())
			assert.Equal(t, tt.wantGlobal, zerolog.GlobalLevel())

			logPath := filepath.Join(env.StateDir, "instl.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestSetupLoggerWritesConsoleAndFile(t *testing.T) {
	env := testutil.NewEnvironment(t)

	var console bytes.Buffer
	SetupLogger(1, &console)
	log.Info().Str("argv", "instl sync").Msg("Invocation started")

	// A buffer is not a terminal, so no escape codes reach it.
	assert.Contains(t, console.String(), "Invocation started")
	assert.NotContains(t, console.String(), "\x1b[")

	data, err := os.ReadFile(filepath.Join(env.StateDir, "instl.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Invocation started"`)
	assert.Contains(t, string(data), `"argv":"instl sync"`)
}

func TestSetupLoggerUnwritableStateDir(t *testing.T) {
	env := testutil.NewEnvironment(t)
	blocker := filepath.Join(env.Root, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	t.Setenv("INSTL_STATE_DIR", filepath.Join(blocker, "state"))

	var console bytes.Buffer
	SetupLogger(0, &console)

	assert.Contains(t, console.String(), "Failed to create log file")
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := GetLogger("invocation")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"invocation"`)
}

func TestDefaultVerbosityKeepsInfoInFileOnly(t *testing.T) {
	env := testutil.NewEnvironment(t)

	var console bytes.Buffer
	SetupLogger(0, &console)
	log.Info().Str("outcome", "succeeded").Msg("Invocation finished")
	log.Warn().Msg("history file is large")

	assert.NotContains(t, console.String(), "Invocation finished")
	assert.Contains(t, console.String(), "history file is large")

	data, err := os.ReadFile(filepath.Join(env.StateDir, "instl.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Invocation finished"`)
	assert.Contains(t, string(data), `"message":"history file is large"`)
}

func TestSetLevelRaisesConsoleAfterSetup(t *testing.T) {
	testutil.NewEnvironment(t)

	var console bytes.Buffer
	SetupLogger(0, &console)
	SetLevel(1)
	log.Info().Msg("now visible")

	assert.Contains(t, console.String(), "now visible")
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	LogCommand("instl", []string{"sync", "--dry-run"})

	output := buf.String()
	assert.Contains(t, output, "instl")
	assert.Contains(t, output, "--dry-run")
	assert.Contains(t, output, "Executing command")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	done := LogOperationStart(logger, "load-config")
	done()

	output := buf.String()
	assert.Contains(t, output, "Operation started")
	assert.Contains(t, output, "Operation completed")
	assert.Contains(t, output, `"duration"`)
}
