package commands

import (
	"embed"
	"io/fs"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Install and synchronize software from manifests"
	MsgVersionShort     = "Print version information"
	MsgVersionLong      = "Print detailed version information including commit hash and build date"
	MsgCompletionShort  = "Generate shell completion script"
	MsgManShort         = "Generate man pages"
	MsgConfigShort      = "Print the effective configuration"
	MsgInvocationsShort = "List recent invocations"

	// Status messages
	MsgNoInvocations = "No invocations recorded yet."
	MsgManWritten    = "Man pages written to %s\n"

	// Version output
	MsgVersionFormat = "instl version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrReadHistory  = "failed to read invocation history: %w"
	MsgErrRenderConfig = "failed to render configuration: %w"
	MsgErrUnknownFmt   = "unknown format %q (use table, json or yaml)"
	MsgErrFlags        = "invalid flags"
	MsgErrNoCommand    = "no command specified"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagLimit       = "Number of invocations to show (0 for all)"
	MsgFlagFormat      = "Output format: table, json or yaml"
	MsgFlagFailed      = "Only show failed invocations"
	MsgFlagDefaults    = "Print the built-in defaults instead"
	MsgFlagManDir      = "Directory to write man pages to"
	MsgFlagHistoryFile = "Read this history file instead of the configured one"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/invocations-long.txt
	msgInvocationsLongRaw string
	MsgInvocationsLong    = strings.TrimSpace(msgInvocationsLongRaw)

	//go:embed msgs/invocations-example.txt
	msgInvocationsExampleRaw string
	MsgInvocationsExample    = strings.TrimRight(msgInvocationsExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)

//go:embed topics
var helpTopics embed.FS

// HelpTopics returns the help topics file system
func HelpTopics() fs.FS {
	sub, err := fs.Sub(helpTopics, "topics")
	if err != nil {
		panic(err)
	}
	return sub
}
