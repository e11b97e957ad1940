package entrypoint

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/arthur-debert/instl/pkg/invocation"
	"github.com/arthur-debert/instl/pkg/logging"
	"github.com/arthur-debert/instl/pkg/streams"
	"github.com/arthur-debert/instl/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRun struct {
	env    *testutil.Environment
	s      *streams.Streams
	stdout *testutil.Capture
	stderr *testutil.Capture
}

func newTestRun(t *testing.T) *testRun {
	t.Helper()

	env := testutil.NewEnvironment(t)
	stdout := testutil.NewCapture(t)
	stderr := testutil.NewCapture(t)

	s, err := streams.NormalizeFiles(stdout.W, stderr.W)
	require.NoError(t, err)

	return &testRun{env: env, s: s, stdout: stdout, stderr: stderr}
}

func (r *testRun) history(t *testing.T) []invocation.Report {
	t.Helper()
	reports, err := invocation.ReadHistory(filepath.Join(r.env.StateDir, "invocations.jsonl"), 0)
	require.NoError(t, err)
	return reports
}

func TestExecuteSucceeds(t *testing.T) {
	run := newTestRun(t)

	var gotArgs []string
	status := Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
		gotArgs = args
		time.Sleep(50 * time.Millisecond)
		_, err := fmt.Fprintln(run.s.Out, "synchronized ✓")
		return err
	})

	assert.Equal(t, 0, status)
	assert.Equal(t, []string{"instl", "sync"}, gotArgs)
	assert.Equal(t, "synchronized ✓\n", run.stdout.String())

	reports := run.history(t)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Succeeded())
	assert.Equal(t, []string{"instl", "sync"}, reports[0].Args)
	assert.GreaterOrEqual(t, reports[0].Duration, 50*time.Millisecond)
	assert.Equal(t, 0, reports[0].ExitCode)
	assert.Equal(t, os.Getpid(), reports[0].PID)
}

func TestExecuteFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"unknown command", stderrors.New(`unknown command "bad-cmd" for "instl"`), 1, ""},
		{"invalid input", errors.New(errors.ErrInvalidInput, "bad manifest"), 2, "INVALID_INPUT"},
		{"exit hint", errors.New(errors.ErrFileWrite, "disk full").WithExitCode(9), 9, "FILE_WRITE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newTestRun(t)

			calls := 0
			status := Execute(context.Background(), []string{"instl", "bad-cmd"}, run.s, func(ctx context.Context, args []string) error {
				calls++
				return tt.err
			})

			assert.Equal(t, tt.status, status)
			assert.Equal(t, 1, calls)

			reports := run.history(t)
			require.Len(t, reports, 1)
			assert.Equal(t, "failed", reports[0].Outcome)
			assert.Equal(t, tt.err.Error(), reports[0].Cause)
			assert.Equal(t, tt.wantCode, reports[0].ErrorCode)
			assert.Equal(t, tt.status, reports[0].ExitCode)
			assert.GreaterOrEqual(t, reports[0].Duration, time.Duration(0))
		})
	}
}

func TestExecutePanicIsReportedAndPropagates(t *testing.T) {
	run := newTestRun(t)

	assert.PanicsWithValue(t, "boom", func() {
		Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
			panic("boom")
		})
	})

	reports := run.history(t)
	require.Len(t, reports, 1)
	assert.Equal(t, "failed", reports[0].Outcome)
	assert.Equal(t, "PANIC", reports[0].ErrorCode)
}

func TestExecuteConfigErrorSkipsEntry(t *testing.T) {
	run := newTestRun(t)
	run.env.WriteConfig(t, "[exit]\ngeneric = 0\n")

	called := false
	status := Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, 78, status)
	assert.Contains(t, run.stderr.String(), "exit.generic must be between 1 and 255")
	assert.Empty(t, run.history(t))
}

func TestExecuteSetupFailureSkipsEntry(t *testing.T) {
	run := newTestRun(t)

	// A regular file where the history directory should be
	blocker := filepath.Join(run.env.Root, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	t.Setenv("INSTL_REPORT_HISTORY_FILE", filepath.Join(blocker, "history", "invocations.jsonl"))

	called := false
	status := Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, 1, status)
	assert.Contains(t, run.stderr.String(), "INVOCATION_SETUP")
}

func TestExecuteLogSinkOnly(t *testing.T) {
	run := newTestRun(t)
	t.Setenv("INSTL_REPORT_SINKS", "log")
	t.Setenv("INSTL_LOG_VERBOSITY", "1")

	status := Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
		return nil
	})

	assert.Equal(t, 0, status)
	assert.Empty(t, run.history(t))
	assert.Contains(t, run.stderr.String(), "Invocation finished")
}

func TestExecuteDefaultConfigLogsToFile(t *testing.T) {
	run := newTestRun(t)

	status := Execute(context.Background(), []string{"instl", "sync"}, run.s, func(ctx context.Context, args []string) error {
		return nil
	})
	require.Equal(t, 0, status)

	// Console stays quiet at the default verbosity, the log file does not
	assert.NotContains(t, run.stderr.String(), "Invocation finished")

	data, err := os.ReadFile(filepath.Join(run.env.StateDir, "instl.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Invocation finished"`)
	assert.Contains(t, string(data), `"outcome":"succeeded"`)
}

func TestPrintErrorDetailsAtDebug(t *testing.T) {
	run := newTestRun(t)
	logging.SetLevel(2)
	t.Cleanup(func() { logging.SetLevel(0) })

	err := errors.New(errors.ErrFileAccess, "cannot open history").
		WithDetail("path", "/tmp/h.jsonl").
		WithDetail("attempt", 2)
	PrintError(run.s.Err, err)

	assert.Equal(t,
		"Error: [FILE_ACCESS] cannot open history\n  attempt: 2\n  path: /tmp/h.jsonl\n",
		run.stderr.String())
}

func TestPrintError(t *testing.T) {
	run := newTestRun(t)
	logging.SetLevel(0)

	PrintError(run.s.Err, stderrors.New("manifest ünreadable"))

	assert.Equal(t, "Error: manifest ünreadable\n", run.stderr.String())
}

// The tests below re-run the test binary as an instl process so that Main,
// stream normalization and the exit status are exercised for real.

const helperEnv = "GO_WANT_HELPER_PROCESS"

func TestHelperProcess(t *testing.T) {
	scenario := os.Getenv(helperEnv)
	if scenario == "" {
		return
	}

	app := func(s *streams.Streams) invocation.EntryFunc {
		return func(ctx context.Context, args []string) error {
			switch scenario {
			case "sync":
				time.Sleep(50 * time.Millisecond)
				_, _ = fmt.Fprintln(s.Out, "synchronized ✓")
				return nil
			case "bad-cmd":
				err := fmt.Errorf("unknown command %q", args[1])
				PrintError(s.Err, err)
				return err
			case "panic":
				panic("boom")
			}
			return nil
		}
	}

	if scenario == "closed-stdout" {
		_ = os.Stdout.Close()
	}

	os.Exit(Main([]string{"instl", scenario}, app))
}

func runHelper(t *testing.T, scenario string) (stdout, stderr string, status int) {
	t.Helper()

	var outBuf, errBuf capturedOutput
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), helperEnv+"="+scenario)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		status = 0
	case stderrors.As(err, &exitErr):
		status = exitErr.ExitCode()
	default:
		require.NoError(t, err)
	}
	return outBuf.String(), errBuf.String(), status
}

type capturedOutput struct{ data []byte }

func (c *capturedOutput) Write(p []byte) (int, error) {
	c.data = append(c.data, p...)
	return len(p), nil
}

func (c *capturedOutput) String() string { return string(c.data) }

func TestMainProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns subprocesses")
	}

	t.Run("success exits zero", func(t *testing.T) {
		env := testutil.NewEnvironment(t)

		stdout, _, status := runHelper(t, "sync")

		assert.Equal(t, 0, status)
		assert.Equal(t, "synchronized ✓\n", stdout)

		reports, err := invocation.ReadHistory(filepath.Join(env.StateDir, "invocations.jsonl"), 0)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Succeeded())
	})

	t.Run("failure exits non-zero", func(t *testing.T) {
		env := testutil.NewEnvironment(t)

		_, stderr, status := runHelper(t, "bad-cmd")

		assert.NotEqual(t, 0, status)
		assert.Contains(t, stderr, `Error: unknown command "bad-cmd"`)

		reports, err := invocation.ReadHistory(filepath.Join(env.StateDir, "invocations.jsonl"), 0)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "failed", reports[0].Outcome)
		assert.Equal(t, status, reports[0].ExitCode)
	})

	t.Run("panic is reported then crashes", func(t *testing.T) {
		env := testutil.NewEnvironment(t)

		_, stderr, status := runHelper(t, "panic")

		assert.NotEqual(t, 0, status)
		assert.Contains(t, stderr, "panic: boom")

		reports, err := invocation.ReadHistory(filepath.Join(env.StateDir, "invocations.jsonl"), 0)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "PANIC", reports[0].ErrorCode)
	})

	t.Run("closed stdout aborts before reporting", func(t *testing.T) {
		env := testutil.NewEnvironment(t)

		_, stderr, status := runHelper(t, "closed-stdout")

		assert.Equal(t, StartupFailureStatus, status)
		assert.Contains(t, stderr, "STARTUP_ENCODING")
		assert.NoFileExists(t, filepath.Join(env.StateDir, "invocations.jsonl"))
	})
}
