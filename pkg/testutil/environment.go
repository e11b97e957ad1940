// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Isolate tests from the user's XDG directories

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Environment points instl's state and config directories at a temporary
// directory for the duration of a test.
type Environment struct {
	Root      string
	StateDir  string
	ConfigDir string
}

// NewEnvironment creates the directories and sets INSTL_STATE_DIR and
// INSTL_CONFIG_DIR. INSTL_* configuration variables inherited from the
// shell are cleared.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	root := t.TempDir()
	env := &Environment{
		Root:      root,
		StateDir:  filepath.Join(root, "state"),
		ConfigDir: filepath.Join(root, "config"),
	}

	for _, dir := range []string{env.StateDir, env.ConfigDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "INSTL_") {
			// Setenv registers the restore; the variable is then removed
			// so config providers do not see an empty value.
			t.Setenv(key, value)
			_ = os.Unsetenv(key)
		}
	}

	t.Setenv("INSTL_STATE_DIR", env.StateDir)
	t.Setenv("INSTL_CONFIG_DIR", env.ConfigDir)
	return env
}

// WriteConfig writes the user configuration file.
func (e *Environment) WriteConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(e.ConfigDir, "instl.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
