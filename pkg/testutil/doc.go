// Package testutil provides utilities for testing instl components.
//
// Key components:
//   - Capture: an os.Pipe whose read side is drained in the background, for
//     tests that need a real file descriptor to write to
//   - Environment: isolated state and config directories for tests that
//     touch the invocation history, the log file or the user config
package testutil
