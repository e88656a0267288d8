package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/nlq/internal/config"
	"github.com/diogo/nlq/internal/controller"
	"github.com/diogo/nlq/internal/form"
	"github.com/diogo/nlq/internal/logging"
	"github.com/diogo/nlq/internal/models"
	"github.com/diogo/nlq/internal/render"
)

// askOptions are the flags of a single question
type askOptions struct {
	format string
	copy   bool
	output string
}

// Styles for the one-shot result
var (
	labelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	sqlBlockStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorTextDim).
			BorderLeft(true).
			BorderRight(false).
			BorderTop(false).
			BorderBottom(false).
			Foreground(colorText).
			PaddingLeft(1)

	metaLineStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)
)

// NewAskCmd creates the one-shot ask command
func NewAskCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	opts := askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the result",
		Long: `Ask a single question and print the generated SQL, the result grid and
the summary. Use --format for machine-readable output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}

			var question string
			switch {
			case len(args) > 0:
				question = args[0]
			case hasPipedInput(deps.Stdin):
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				question = string(data)
			}

			return runAsk(cmd.Context(), deps, cfg, question, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "F", render.FormatTable,
		"Output format ("+strings.Join(render.Formats(), ", ")+")")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the generated SQL to the clipboard")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to a file")

	return cmd
}

// runAsk submits one question through the controller and writes the settled
// result. The returned error is the request error, if any.
func runAsk(ctx context.Context, deps *Dependencies, cfg config.Config, question string, opts askOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown format %q (valid: %s)", opts.format, strings.Join(render.Formats(), ", "))
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

	fields := form.State{Locator: cfg.DefaultLocator, Question: question}
	ticket, err := ctrl.Submit(fields.Request(defaultsFrom(cfg)))
	if err != nil {
		return err
	}

	decorated := opts.format == render.FormatTable && isTerminal(deps.Stderr)
	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Generating SQL")
		spin.start()
	}

	ctrl.Settle(ctrl.Issue(ctx, ticket))
	snap := ctrl.Snapshot()

	if snap.State != controller.StateSuccess {
		if spin != nil {
			spin.stopWithError()
		}
		logger.Debug("ask failed", slog.Any("error", snap.Err))
		return snap.Err
	}
	if spin != nil {
		spin.stopWithSuccess(fmt.Sprintf("Done in %s", snap.Elapsed.Round(time.Millisecond)))
	}

	var buf bytes.Buffer
	if err := writeResult(&buf, snap, cfg, opts.format, terminalWidth(deps.Stdout)); err != nil {
		return err
	}

	if opts.copy || cfg.CopyToClipboard {
		if err := deps.Clipboard(snap.Response.GeneratedQuery); err != nil {
			warn := lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warn)
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ SQL copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Result saved to %s", opts.output),
		))
		return nil
	}

	_, err = deps.Stdout.Write(buf.Bytes())
	return err
}

// writeResult writes a successful snapshot in the requested format
func writeResult(w io.Writer, snap controller.Snapshot, cfg config.Config, format string, width int) error {
	resp := snap.Response

	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, resp)
	case render.FormatYAML:
		return render.WriteYAML(w, resp)
	case render.FormatCSV:
		return render.WriteCSV(w, resp)
	}

	theme := render.GetTUITheme()
	contentWidth := width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}
	if contentWidth > 160 {
		contentWidth = 160
	}

	var sections []string
	sections = append(sections,
		labelStyle.Render("SQL"),
		sqlBlockStyle.Render(render.StripControl(resp.GeneratedQuery)),
		"",
		render.Table(render.ProjectResponse(resp), theme.TableOptions(0)),
	)

	opts := theme.RenderOptions(render.OptionsFromConfig(cfg)).WithWidth(contentWidth)
	summary := render.SummaryText(resp.Summary, opts)
	if summary != "" {
		sections = append(sections, "", labelStyle.Render("Summary"), summary)
	}

	rows := resp.RowCount()
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	sections = append(sections, "", metaLineStyle.Render(
		fmt.Sprintf("%d %s in %s", rows, noun, snap.Elapsed.Round(time.Millisecond)),
	))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func validFormat(format string) bool {
	for _, f := range render.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

func defaultsFrom(cfg config.Config) form.Defaults {
	return form.Defaults{
		Dialect:   models.Dialect(cfg.Dialect),
		MaxTokens: cfg.MaxTokens,
	}
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w or a default value
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}
