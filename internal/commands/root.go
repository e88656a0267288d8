// Package commands provides CLI commands for nlq.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/nlq/internal/config"
	"github.com/diogo/nlq/internal/models"
	"github.com/diogo/nlq/internal/render"
	"github.com/diogo/nlq/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	endpoint  string
	locator   string
	dialect   string
	maxTokens int
	timeout   time.Duration
	logFile   string
	verbose   bool
	insecure  bool
}

// NewRootCmd creates the nlq root command with all subcommands attached
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "nlq [question]",
		Short: "Ask questions about your database in plain language",
		Long: `nlq sends natural-language questions to a text-to-SQL service and shows
the generated SQL, the result rows and an optional summary.

Examples:
  nlq                                         Start the interactive console
  nlq --db sales.db "total revenue by region" Ask a single question
  echo "how many orders?" | nlq --db sales.db Read the question from stdin
  nlq ask --db sales.db -F csv "top customers"
  nlq health                                  Check the query service`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "nlq %s (built %s)\n", Version, BuildTime)
				return nil
			}

			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}

			// Positional argument or piped stdin runs a single question
			if len(args) > 0 {
				return runAsk(cmd.Context(), deps, cfg, args[0], askOptions{format: render.FormatTable})
			}
			if hasPipedInput(deps.Stdin) {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runAsk(cmd.Context(), deps, cfg, string(data), askOptions{format: render.FormatTable})
			}

			return runConsole(cmd.Context(), deps, cfg)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.endpoint, "endpoint", "e", "", "Query service base URL (default "+models.DefaultEndpoint+")")
	pf.StringVarP(&flags.locator, "db", "d", "", "Database locator sent as db_path")
	pf.StringVar(&flags.dialect, "dialect", "", "SQL dialect ("+dialectNames()+")")
	pf.IntVar(&flags.maxTokens, "max-tokens", 0, "Generation budget sent with each question")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout (e.g. 30s)")
	pf.StringVar(&flags.logFile, "log-file", "", "Write debug logs to this file")
	pf.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&flags.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewConsoleCmd(deps, flags))
	cmd.AddCommand(NewAskCmd(deps, flags))
	cmd.AddCommand(NewHealthCmd(deps, flags))
	cmd.AddCommand(NewConfigCmd(deps, flags))

	return cmd
}

// rootCmd is the command run by Execute
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), tui.FormatError(err))
		os.Exit(1)
	}
}

// resolveConfig layers flags over the environment, .env, config file and
// defaults, then applies the configured TUI theme.
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("endpoint") {
		cfg.Endpoint = flags.endpoint
	}
	if changed("db") {
		cfg.DefaultLocator = flags.locator
	}
	if changed("dialect") {
		cfg.Dialect = flags.dialect
	}
	if changed("max-tokens") {
		cfg.MaxTokens = flags.maxTokens
	}
	if changed("timeout") {
		if flags.timeout < time.Second {
			return cfg, fmt.Errorf("invalid --timeout %s: must be at least 1s", flags.timeout)
		}
		cfg.TimeoutSeconds = int(flags.timeout.Round(time.Second) / time.Second)
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("insecure") {
		cfg.InsecureSkipVerify = flags.insecure
	}

	if _, ok := models.DialectFromName(strings.ToLower(cfg.Dialect)); !ok {
		return cfg, fmt.Errorf("unsupported dialect %q (valid: %s)", cfg.Dialect, dialectNames())
	}
	cfg.Dialect = strings.ToLower(cfg.Dialect)
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = config.DefaultTimeoutSeconds
	}

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	return cfg, nil
}

func dialectNames() string {
	dialects := models.AllDialects()
	names := make([]string, len(dialects))
	for i, d := range dialects {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// hasPipedInput reports whether r is a non-terminal stdin with data to read
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
