package invocation

import (
	"os"
	"time"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/google/uuid"
)

// Context is what a Reporter captures when its scope opens. It is not
// modified afterwards.
type Context struct {
	ID      string
	Args    []string
	Start   time.Time
	PID     int
	Version string
	Dir     string
}

func captureContext(args []string, now time.Time, version string) (Context, error) {
	if len(args) == 0 {
		return Context{}, errors.New(errors.ErrInvocationSetup, "no command line to capture: argv is empty")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Context{}, errors.Wrap(err, errors.ErrInvocationSetup, "failed to generate invocation id")
	}

	// The working directory is informational; a deleted cwd is not fatal.
	dir, _ := os.Getwd()

	captured := make([]string, len(args))
	copy(captured, args)

	return Context{
		ID:      id.String(),
		Args:    captured,
		Start:   now,
		PID:     os.Getpid(),
		Version: version,
		Dir:     dir,
	}, nil
}
