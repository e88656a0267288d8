package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"github.com/diogo/nlq/internal/api"
	"github.com/diogo/nlq/internal/config"
	"github.com/diogo/nlq/internal/controller"
	"github.com/diogo/nlq/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunConsole(ctx context.Context, ctrl *controller.Controller, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the query service client from the resolved configuration.
	NewClient func(cfg config.Config, logger *slog.Logger) (api.ServiceClientInterface, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard copies text to the system clipboard.
	Clipboard func(string) error

	// Stdin, Stdout and Stderr are the command streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunConsole(ctx context.Context, ctrl *controller.Controller, opts tui.Options) error {
	return tui.Run(ctx, ctrl, opts)
}

// newServiceClient is the production client factory
func newServiceClient(cfg config.Config, logger *slog.Logger) (api.ServiceClientInterface, error) {
	opts := []api.ClientOption{
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		api.WithLogger(logger),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, api.WithInsecureSkipVerify(true))
	}
	return api.NewClient(cfg.Endpoint, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: newServiceClient,
		TUI:       &DefaultTUI{},
		Clipboard: clipboard.WriteAll,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}
