package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/instl/pkg/errors"
)

// Environment variable names
const (
	// EnvInstlStateDir overrides the XDG state directory for instl
	EnvInstlStateDir = "INSTL_STATE_DIR"

	// EnvInstlConfigDir overrides the XDG config directory for instl
	EnvInstlConfigDir = "INSTL_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// InstlDirName is the directory name for instl-specific files
	InstlDirName = "instl"

	// LogFileName is the name of the log file
	LogFileName = "instl.log"

	// HistoryFileName is the name of the invocation history file
	HistoryFileName = "invocations.jsonl"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "instl.toml"
)

// Paths provides centralized path management for instl
type Paths interface {
	StateDir() string
	ConfigDir() string
	LogFilePath() string
	HistoryFilePath() string
	ConfigFilePath() string
}

type paths struct {
	xdgState  string
	xdgConfig string
}

// New creates a new Paths instance, resolving directories from the
// instl overrides first, then the XDG variables, then the XDG defaults.
func New() (Paths, error) {
	p := &paths{}

	stateDir, err := resolveDir(EnvInstlStateDir, "XDG_STATE_HOME", xdg.StateHome)
	if err != nil {
		return nil, err
	}
	p.xdgState = stateDir

	configDir, err := resolveDir(EnvInstlConfigDir, "XDG_CONFIG_HOME", xdg.ConfigHome)
	if err != nil {
		return nil, err
	}
	p.xdgConfig = configDir

	return p, nil
}

// resolveDir picks the instl directory for one XDG category. An explicit
// override is used as-is; the XDG base gets the instl subdirectory.
func resolveDir(overrideEnv, xdgEnv, xdgDefault string) (string, error) {
	dir := ""
	switch {
	case os.Getenv(overrideEnv) != "":
		dir = ExpandHome(os.Getenv(overrideEnv))
	case os.Getenv(xdgEnv) != "":
		dir = filepath.Join(ExpandHome(os.Getenv(xdgEnv)), InstlDirName)
	default:
		dir = filepath.Join(xdgDefault, InstlDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", dir)
	}
	return abs, nil
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		// Can't expand, return as-is
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	// Handle both ~/ and ~
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// StateDir returns the directory for logs and the invocation history
func (p *paths) StateDir() string {
	return p.xdgState
}

// ConfigDir returns the directory holding the user configuration
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// LogFilePath returns the path to the instl log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// HistoryFilePath returns the path to the invocation history file
func (p *paths) HistoryFilePath() string {
	return filepath.Join(p.xdgState, HistoryFileName)
}

// ConfigFilePath returns the path to the user configuration file
func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}
