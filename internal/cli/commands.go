package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/instl/internal/commands"
	"github.com/arthur-debert/instl/internal/entrypoint"
	"github.com/arthur-debert/instl/internal/version"
	"github.com/arthur-debert/instl/pkg/cobrax/topics"
	"github.com/arthur-debert/instl/pkg/config"
	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/arthur-debert/instl/pkg/invocation"
	"github.com/arthur-debert/instl/pkg/logging"
	"github.com/arthur-debert/instl/pkg/paths"
	"github.com/arthur-debert/instl/pkg/streams"
	"github.com/arthur-debert/instl/pkg/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Entry is the entry function of the instl binary: it runs the command
// tree on the normalized streams and prints its own failures to stderr.
func Entry(s *streams.Streams) invocation.EntryFunc {
	return func(ctx context.Context, args []string) error {
		rootCmd := NewRootCmd()
		rootCmd.SetOut(s.Out)
		rootCmd.SetErr(s.Err)
		rootCmd.SetArgs(args[1:])

		if err := rootCmd.ExecuteContext(ctx); err != nil {
			entrypoint.PrintError(s.Err, err)
			return err
		}
		return nil
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "instl",
		Short:   commands.MsgRootShort,
		Long:    commands.MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logging is set up before the command tree runs; -v only raises the level
			if verbosity > 0 {
				logging.SetLevel(config.Get().Log.Verbosity + verbosity)
			}
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but fail, this is incorrect usage
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, commands.MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", commands.MsgFlagVerbose)

	// --history_file and --history-file are the same flag
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrInvalidInput, commands.MsgErrFlags)
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInvocationsCmd())

	// Help topics replace cobra's help command
	if _, err := topics.InitializeWithOptions(rootCmd, commands.HelpTopics(), topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to load help topics")
	}

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: commands.MsgVersionShort,
		Long:  commands.MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, commands.MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, commands.MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, commands.MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 commands.MsgCompletionShort,
		Long:                  commands.MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "man",
		Short: commands.MsgManShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "INSTL",
				Section: "1",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write man pages to %s", dir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), commands.MsgManWritten, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", commands.MsgFlagManDir)
	return cmd
}

func newConfigCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: commands.MsgConfigShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				fmt.Fprintln(cmd.OutOrStdout(), config.DefaultConfigContent())
				return nil
			}

			data, err := config.Get().TOML()
			if err != nil {
				return fmt.Errorf(commands.MsgErrRenderConfig, err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, commands.MsgFlagDefaults)
	return cmd
}

func newInvocationsCmd() *cobra.Command {
	var (
		limit       int
		format      string
		failed      bool
		historyFile string
	)

	cmd := &cobra.Command{
		Use:     "invocations",
		Aliases: []string{"history"},
		Short:   commands.MsgInvocationsShort,
		Long:    commands.MsgInvocationsLong,
		Example: commands.MsgInvocationsExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetReport().HistoryFile
			if historyFile != "" {
				path = paths.ExpandHome(historyFile)
			}
			logger := logging.GetLogger("cli.invocations")
			logger.Debug().Str("path", path).Int("limit", limit).Msg("Reading invocation history")

			// Filtering happens after the limit is applied to the file, so
			// read everything when filtering.
			readLimit := limit
			if failed {
				readLimit = 0
			}
			reports, err := invocation.ReadHistory(path, readLimit)
			if err != nil {
				return fmt.Errorf(commands.MsgErrReadHistory, err)
			}
			if failed {
				reports = onlyFailed(reports, limit)
			}

			out := cmd.OutOrStdout()
			return renderInvocations(out, style.New(rendererFor(out)), reports, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, commands.MsgFlagLimit)
	cmd.Flags().StringVarP(&format, "format", "f", "table", commands.MsgFlagFormat)
	cmd.Flags().BoolVar(&failed, "failed", false, commands.MsgFlagFailed)
	cmd.Flags().StringVar(&historyFile, "history-file", "", commands.MsgFlagHistoryFile)
	return cmd
}

func onlyFailed(reports []invocation.Report, limit int) []invocation.Report {
	var out []invocation.Report
	for _, r := range reports {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// rendererFor returns the lipgloss renderer for a command's output: the
// stream's own when it is a normalized stream, a colourless one otherwise.
func rendererFor(w io.Writer) *lipgloss.Renderer {
	if s, ok := w.(*streams.Stream); ok {
		return streams.Renderer(s)
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func renderInvocations(w io.Writer, styles *style.Styles, reports []invocation.Report, format string) error {
	switch format {
	case "json":
		if reports == nil {
			reports = []invocation.Report{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		if len(reports) == 0 {
			fmt.Fprintln(w, commands.MsgNoInvocations)
			return nil
		}
		data := pterm.TableData{{"STARTED", "DURATION", "OUTCOME", "EXIT", "COMMAND"}}
		for _, r := range reports {
			data = append(data, []string{
				r.Start.Local().Format(time.DateTime),
				r.Duration.Round(time.Millisecond).String(),
				styles.Outcome(r.Outcome),
				styles.ExitCode(r.ExitCode, strconv.Itoa(r.ExitCode)),
				strings.Join(r.Args, " "),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, table)
		return nil
	default:
		return errors.Newf(errors.ErrInvalidInput, commands.MsgErrUnknownFmt, format)
	}
}
