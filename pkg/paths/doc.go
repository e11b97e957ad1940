// Package paths provides centralized path handling for instl.
// It implements XDG Base Directory specification compliance for the
// files instl writes outside of the installation targets: its log file,
// the invocation history and the user configuration.
package paths
