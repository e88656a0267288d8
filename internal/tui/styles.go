// Package tui provides the interactive query console for nlq.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/nlq/internal/errors"
	"github.com/diogo/nlq/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	// Header panel style
	headerStyle lipgloss.Style

	// Title style for header
	titleStyle lipgloss.Style

	// Endpoint style in the header
	subtitleStyle lipgloss.Style

	// Hint text style
	hintStyle lipgloss.Style

	// Results area panel
	resultsAreaStyle lipgloss.Style

	// Section labels inside the results area
	sectionLabelStyle lipgloss.Style

	// Generated SQL block
	sqlStyle lipgloss.Style

	// Row count and timing line
	metaStyle lipgloss.Style

	// Input area panel
	inputPanelStyle lipgloss.Style

	// Input label styles
	inputLabelStyle        lipgloss.Style
	inputLabelFocusedStyle lipgloss.Style

	// Loading/spinner style
	loadingStyle lipgloss.Style

	// Status bar styles
	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	// Transient feedback (clipboard and similar)
	feedbackStyle lipgloss.Style

	// Error style
	errorStyle lipgloss.Style

	// Welcome styles
	welcomeTitleStyle lipgloss.Style
	welcomeStyle      lipgloss.Style
)

// init loads the default theme on package initialization
func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	resultsAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	sectionLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	sqlStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorAccent).
		BorderLeft(true).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Foreground(colorText).
		PaddingLeft(1)

	metaStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Width(10)

	inputLabelFocusedStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Width(10)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	feedbackStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)
}

// FormatError returns the error banner. The first line is the error message
// as received; structured errors add their status, field or endpoint below it.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render("✗ " + render.StripControl(err.Error())))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if field := errors.GetField(err); field != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Field: %s", field)))
	}

	if endpoint := errors.GetEndpoint(err); endpoint != "" && !errors.IsRequestFailed(err) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case errors.IsNetwork(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the query service is running, or run 'nlq health'"))
	case errors.IsInvalidResponse(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The service replied with an unexpected payload; check its version"))
	}

	return sb.String()
}
