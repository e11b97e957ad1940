// Package entrypoint is the process boundary of instl: it normalizes the
// standard streams, runs the entry function inside an invocation reporter
// and turns the outcome into an exit status.
package entrypoint

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/arthur-debert/instl/internal/version"
	"github.com/arthur-debert/instl/pkg/config"
	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/arthur-debert/instl/pkg/invocation"
	"github.com/arthur-debert/instl/pkg/logging"
	"github.com/arthur-debert/instl/pkg/streams"
	"github.com/arthur-debert/instl/pkg/style"
	"github.com/rs/zerolog"
)

// App builds the entry function once the streams it must write to exist
type App func(s *streams.Streams) invocation.EntryFunc

// Main runs app for the process command line args and returns the exit
// status. The caller passes it to os.Exit. A panic in the entry function
// is reported and then propagates out of Main.
func Main(args []string, app App) int {
	s, err := streams.Normalize()
	if err != nil {
		// Best effort: stderr may be the stream that failed.
		fmt.Fprintf(os.Stderr, "instl: %v\n", err)
		return StartupFailureStatus
	}
	defer func() { _ = s.Flush() }()

	return Execute(context.Background(), args, s, app(s))
}

// Execute is Main after stream normalization: it loads the configuration,
// sets up logging, and runs entry exactly once inside a reporter scope.
func Execute(parent context.Context, args []string, s *streams.Streams, entry invocation.EntryFunc) int {
	// Console at warn until the configuration says otherwise
	logging.SetupLogger(0, s.Err)

	done := logging.LogOperationStart(logging.GetLogger("config"), "load-config")
	cfg, err := config.LoadConfiguration(nil)
	done()
	if err != nil {
		PrintError(s.Err, err)
		return ExitStatus(err, config.Default().Exit)
	}
	config.Initialize(cfg)
	logging.SetLevel(cfg.Log.Verbosity)

	ctx, stop := withSignals(parent, terminationSignals...)
	defer stop()

	logger := logging.GetLogger("invocation")
	opts := []invocation.Option{
		invocation.WithLogger(logger),
		invocation.WithVersion(version.Version),
		invocation.WithExitStatus(func(err error) int {
			return ExitStatus(resolveCause(ctx, err), config.GetExit())
		}),
	}
	if cfg.Report.HasSink(config.SinkLog) {
		opts = append(opts, invocation.WithSink(invocation.NewLogSink(logger)))
	}
	if cfg.Report.HasSink(config.SinkFile) {
		opts = append(opts, invocation.WithHistoryFile(cfg.Report.HistoryFile))
	}

	entered := false
	err = invocation.Run(ctx, args, func(ctx context.Context, args []string) error {
		entered = true
		return entry(ctx, args)
	}, opts...)

	if err != nil && !entered {
		// Setup failed before the entry function could print anything.
		PrintError(s.Err, err)
	}

	return ExitStatus(resolveCause(ctx, err), config.GetExit())
}

// PrintError writes err to s in the error style the commands use. At
// debug verbosity the error's details follow, one per line.
func PrintError(s *streams.Stream, err error) {
	styles := style.New(streams.Renderer(s))
	_, _ = fmt.Fprintln(s, styles.Error.Render(fmt.Sprintf("Error: %v", err)))

	if logging.ConsoleLevel() > zerolog.DebugLevel {
		return
	}
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintln(s, styles.Muted.Render(fmt.Sprintf("  %s: %v", k, details[k])))
	}
}
