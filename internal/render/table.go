package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/diogo/nlq/internal/models"
)

// NoRowsPlaceholder is rendered instead of a grid when a result has no rows
const NoRowsPlaceholder = "(no rows)"

// Grid is a result projected onto its authoritative columns
type Grid struct {
	Columns []string
	Cells   [][]string
}

// Project builds the m×n grid for rows over columns. cell(i,j) is the text of
// rows[i][columns[j]], or "" when the key is absent or null. Keys of a row that
// are not in columns are ignored, and row key order never affects output.
func Project(columns []string, rows []models.Row) Grid {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(columns))
		for j, col := range columns {
			line[j] = FormatCell(row.Get(col))
		}
		cells[i] = line
	}
	return Grid{Columns: columns, Cells: cells}
}

// FormatCell renders a single cell: strings verbatim, numbers as sent, bools
// as true/false, and "" for null or absent values.
func FormatCell(v models.Value) string {
	if !v.Present() {
		return ""
	}
	return v.Text()
}

// ProjectResponse projects a validated response
func ProjectResponse(resp *models.QueryResponse) Grid {
	if resp == nil {
		return Grid{}
	}
	return Project(resp.Columns, resp.Rows)
}

// Empty reports whether the grid has no rows
func (g Grid) Empty() bool {
	return len(g.Cells) == 0
}

// TableOptions configures Table rendering
type TableOptions struct {
	// Width is the maximum table width, 0 for natural width
	Width       int
	BorderColor lipgloss.Color
	HeaderColor lipgloss.Color
}

// Table renders g for the terminal. A grid without rows renders the
// NoRowsPlaceholder; a grid with rows but no columns renders nothing.
func Table(g Grid, opts TableOptions) string {
	if g.Empty() {
		return NoRowsPlaceholder
	}
	if len(g.Columns) == 0 {
		return ""
	}

	headers := make([]string, len(g.Columns))
	for i, col := range g.Columns {
		headers[i] = displayCell(col)
	}

	rows := make([][]string, len(g.Cells))
	for i, line := range g.Cells {
		out := make([]string, len(line))
		for j, cell := range line {
			out[j] = displayCell(cell)
		}
		rows[i] = out
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if opts.HeaderColor != "" {
		headerStyle = headerStyle.Foreground(opts.HeaderColor)
	}
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if opts.BorderColor != "" {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(opts.BorderColor))
	}
	if opts.Width > 0 {
		t = t.Width(opts.Width)
	}

	return t.Render()
}

// displayCell makes a cell safe for a single grid line: control characters
// are dropped and line breaks become spaces.
func displayCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	return StripControl(s)
}
