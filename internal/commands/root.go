// Package commands provides CLI commands for ayurchat.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/config"
)

var (
	// Global flags
	baseURLFlag string
	verboseFlag bool
	outputFlag  string
	fileFlag    string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// annotationTUI marks commands that own the terminal; they log to a file.
const annotationTUI = "tui"

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd creates the root command and its subcommands
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ayurchat [question]",
		Short: "Terminal client for the AyurVeda Assistant",
		Long: `ayurchat is a terminal client for the AyurVeda Assistant chat backend.
It logs in with an email and name, keeps the backend session between runs
and relays your questions to the assistant.

Examples:
  ayurchat chat                          Start the interactive chat
  ayurchat login --email a@b.c --name A  Log in without the TUI
  ayurchat "What is my dosha?"           Ask a single question
  ayurchat -f question.md                Read the question from a file
  cat question.md | ayurchat             Read the question from stdin
  ayurchat "Hello" -o answer.md          Save the answer to a file
  ayurchat import-session                Reuse a session from your browser`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd, deps)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "ayurchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			question, ok, err := readQuestion(deps.Stdin, args, fileFlag)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}

			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), deps, cfg, question, outputFlag)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the answer to a file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the question from a file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		NewChatCmd(deps),
		NewAskCmd(deps),
		NewLoginCmd(deps),
		NewLogoutCmd(deps),
		NewStatusCmd(deps),
		NewPingCmd(deps),
		NewImportSessionCmd(deps),
		NewConfigCmd(deps),
	)
	return cmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = closeLogging()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), formatErrorMessage(err, "Error"))
		stop()
		os.Exit(1)
	}
}

// loadSettings loads the config and applies the global flags
func loadSettings() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURLFlag != "" {
		if err := cfg.Set("base_url", baseURLFlag); err != nil {
			return cfg, err
		}
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	return cfg, nil
}

// readQuestion picks the question from --file, piped stdin or the argument,
// in that order. ok is false when none was given.
func readQuestion(stdin io.Reader, args []string, file string) (string, bool, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if hasPipedInput(stdin) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), true, nil
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// hasPipedInput reports whether r is a file that is not a terminal.
// Readers that are not files never count as piped.
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
