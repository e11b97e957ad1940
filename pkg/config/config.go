package config

import (
	"strings"
)

// Sink names accepted in report.sinks
const (
	SinkLog  = "log"
	SinkFile = "file"
)

// Config is the effective instl configuration
type Config struct {
	Log    Log    `koanf:"log" toml:"log"`
	Report Report `koanf:"report" toml:"report"`
	Exit   Exit   `koanf:"exit" toml:"exit"`
}

// Log configures the zerolog setup
type Log struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity"`
}

// Report configures where invocation outcomes go
type Report struct {
	Sinks       []string `koanf:"sinks" toml:"sinks"`
	HistoryFile string   `koanf:"history_file" toml:"history_file"`
}

// Exit configures how a failed invocation maps to a process exit status
type Exit struct {
	Generic int            `koanf:"generic" toml:"generic"`
	Codes   map[string]int `koanf:"codes" toml:"codes"`
}

// HasSink reports whether the named sink is enabled
func (r Report) HasSink(name string) bool {
	for _, s := range r.Sinks {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}

// StatusFor returns the configured exit status for an error code, or 0
func (e Exit) StatusFor(code string) int {
	if status, ok := e.Codes[code]; ok {
		return status
	}
	return 0
}

// Default returns the embedded defaults without consulting the user file
// or the environment. It panics only if the embedded file is broken.
func Default() *Config {
	cfg, err := load(false, nil)
	if err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}
	return cfg
}
