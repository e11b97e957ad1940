package config

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/arthur-debert/instl/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	env := testutil.NewEnvironment(t)

	cfg, err := LoadConfiguration(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Log.Verbosity)
	assert.Equal(t, []string{SinkLog, SinkFile}, cfg.Report.Sinks)
	assert.Equal(t, filepath.Join(env.StateDir, "invocations.jsonl"), cfg.Report.HistoryFile)
	assert.Equal(t, 1, cfg.Exit.Generic)
	assert.Equal(t, 2, cfg.Exit.StatusFor("INVALID_INPUT"))
	assert.Equal(t, 0, cfg.Exit.StatusFor("NOT_CONFIGURED"))
}

func TestLoadConfigurationLayers(t *testing.T) {
	tests := []struct {
		name      string
		userFile  string
		env       map[string]string
		overrides map[string]interface{}
		validate  func(t *testing.T, cfg *Config)
	}{
		{
			name: "user file overrides defaults and merges exit codes",
			userFile: `
[report]
sinks = ["file"]
history_file = "/var/log/instl/history.jsonl"

[exit]
generic = 3

[exit.codes]
NOT_FOUND = 44
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{SinkFile}, cfg.Report.Sinks)
				assert.Equal(t, "/var/log/instl/history.jsonl", cfg.Report.HistoryFile)
				assert.Equal(t, 3, cfg.Exit.Generic)
				assert.Equal(t, 44, cfg.Exit.StatusFor("NOT_FOUND"))
				assert.Equal(t, 2, cfg.Exit.StatusFor("INVALID_INPUT"), "default codes survive")
			},
		},
		{
			name:     "env overrides user file",
			userFile: "[exit]\ngeneric = 3\n",
			env: map[string]string{
				"INSTL_EXIT_GENERIC":        "5",
				"INSTL_LOG_VERBOSITY":       "2",
				"INSTL_REPORT_SINKS":        "log",
				"INSTL_REPORT_HISTORY_FILE": "/tmp/instl-history.jsonl",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5, cfg.Exit.Generic)
				assert.Equal(t, 2, cfg.Log.Verbosity)
				assert.Equal(t, []string{SinkLog}, cfg.Report.Sinks)
				assert.Equal(t, "/tmp/instl-history.jsonl", cfg.Report.HistoryFile)
			},
		},
		{
			name: "overrides win over env",
			env:  map[string]string{"INSTL_LOG_VERBOSITY": "1"},
			overrides: map[string]interface{}{
				"log.verbosity": 3,
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Log.Verbosity)
			},
		},
		{
			name:     "sink names are normalized",
			userFile: "[report]\nsinks = [\" LOG \", \"File\"]\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{SinkLog, SinkFile}, cfg.Report.Sinks)
				assert.True(t, cfg.Report.HasSink(SinkFile))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t)
			if tt.userFile != "" {
				env.WriteConfig(t, tt.userFile)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfiguration(tt.overrides)
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		userFile string
		env      map[string]string
		wantCode errors.ErrorCode
	}{
		{
			name:     "malformed toml",
			userFile: "[exit\ngeneric = ",
			wantCode: errors.ErrConfigParse,
		},
		{
			name:     "unknown sink",
			userFile: "[report]\nsinks = [\"syslog\"]\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "generic status zero would read as success",
			env:      map[string]string{"INSTL_EXIT_GENERIC": "0"},
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "mapped status out of range",
			userFile: "[exit.codes]\nPANIC = 300\n",
			wantCode: errors.ErrConfigValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t)
			if tt.userFile != "" {
				env.WriteConfig(t, tt.userFile)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfiguration(nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestDefaultIgnoresUserLayers(t *testing.T) {
	env := testutil.NewEnvironment(t)
	env.WriteConfig(t, "[exit]\ngeneric = 9\n")
	t.Setenv("INSTL_LOG_VERBOSITY", "3")

	cfg := Default()
	assert.Equal(t, 1, cfg.Exit.Generic)
	assert.Equal(t, 0, cfg.Log.Verbosity)
}

func TestAccess(t *testing.T) {
	testutil.NewEnvironment(t)
	t.Cleanup(func() { globalConfig = nil })

	globalConfig = nil
	assert.Equal(t, 1, GetExit().Generic)

	Initialize(&Config{Report: Report{Sinks: []string{SinkLog}}, Exit: Exit{Generic: 7}})
	assert.Equal(t, 7, GetExit().Generic)
	assert.False(t, GetReport().HasSink(SinkFile))
}

func TestTOML(t *testing.T) {
	testutil.NewEnvironment(t)

	cfg, err := LoadConfiguration(map[string]interface{}{"exit.generic": 4})
	require.NoError(t, err)

	data, err := cfg.TOML()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "[exit]")
	assert.Contains(t, out, "generic = 4")
	assert.Contains(t, out, "INVALID_INPUT = 2")
	assert.Regexp(t, `sinks = \[.log., .file.\]`, out)
	assert.Contains(t, DefaultConfigContent(), "[report]")
}
