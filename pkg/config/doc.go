// Package config handles configuration management for instl.
// It layers embedded defaults, the user's instl.toml, INSTL_* environment
// variables and explicit overrides, in that order.
package config
