package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/nlq/internal/logging"
)

// NewHealthCmd creates the service health probe command
func NewHealthCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the query service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
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

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			start := time.Now()
			if err := client.Health(ctx); err != nil {
				return err
			}

			ok := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ %s is healthy (%s)", client.Endpoint(), time.Since(start).Round(time.Millisecond)),
			)
			fmt.Fprintln(deps.Stdout, ok)
			return nil
		},
	}
}
