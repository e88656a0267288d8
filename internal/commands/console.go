package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/nlq/internal/config"
	"github.com/diogo/nlq/internal/controller"
	"github.com/diogo/nlq/internal/logging"
	"github.com/diogo/nlq/internal/render"
	"github.com/diogo/nlq/internal/tui"
)

// NewConsoleCmd creates the interactive console command
func NewConsoleCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "console",
		Aliases: []string{"tui"},
		Short:   "Start the interactive query console",
		Long: `Start the interactive console. Enter a database locator and a question,
then press Enter to see the generated SQL, the result grid and the summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runConsole(cmd.Context(), deps, cfg)
		},
	}
}

// runConsole wires the client, controller and console together
func runConsole(ctx context.Context, deps *Dependencies, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, closer, err := logging.Open(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	ctrl := controller.New(client, controller.WithLogger(logger))

	logger.Info("console started", "endpoint", client.Endpoint(), "dialect", cfg.Dialect)
	return deps.TUI.RunConsole(ctx, ctrl, tui.Options{
		Endpoint:  client.Endpoint(),
		Defaults:  defaultsFrom(cfg),
		Locator:   cfg.DefaultLocator,
		Render:    render.OptionsFromConfig(cfg),
		Clipboard: deps.Clipboard,
	})
}
