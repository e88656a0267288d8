package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/diogo/nlq/internal/models"
)

// Output formats for machine-readable results
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// Formats returns the supported output formats
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatYAML, FormatCSV}
}

// exportDoc is the JSON shape of an exported result. Rows keep only the
// authoritative columns; absent cells are written as null.
type exportDoc struct {
	SQL       string                    `json:"sql"`
	Columns   []string                  `json:"columns"`
	Rows      []map[string]models.Value `json:"rows"`
	RawAnswer *string                   `json:"raw_answer"`
	Summary   *string                   `json:"summary"`
}

// WriteJSON writes resp as indented JSON
func WriteJSON(w io.Writer, resp *models.QueryResponse) error {
	doc := exportDoc{
		SQL:       resp.GeneratedQuery,
		Columns:   resp.Columns,
		Rows:      make([]map[string]models.Value, len(resp.Rows)),
		RawAnswer: resp.RawAnswer,
		Summary:   resp.Summary,
	}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	for i, row := range resp.Rows {
		out := make(map[string]models.Value, len(resp.Columns))
		for _, col := range resp.Columns {
			out[col] = row.Get(col)
		}
		doc.Rows[i] = out
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteYAML writes resp as YAML, keeping column order inside each row
func WriteYAML(w io.Writer, resp *models.QueryResponse) error {
	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range resp.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range resp.Columns {
			value := &yaml.Node{}
			if err := value.Encode(row.Get(col).Interface()); err != nil {
				return fmt.Errorf("failed to encode cell %q: %w", col, err)
			}
			m.Content = append(m.Content, scalarNode(col), value)
		}
		rows.Content = append(rows.Content, m)
	}

	columns := &yaml.Node{}
	if err := columns.Encode(resp.Columns); err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		scalarNode("sql"), scalarNode(resp.GeneratedQuery),
		scalarNode("columns"), columns,
		scalarNode("rows"), rows,
	)
	if resp.RawAnswer != nil {
		doc.Content = append(doc.Content, scalarNode("raw_answer"), scalarNode(*resp.RawAnswer))
	}
	if resp.Summary != nil {
		doc.Content = append(doc.Content, scalarNode("summary"), scalarNode(*resp.Summary))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// WriteCSV writes the projected grid with a header line
func WriteCSV(w io.Writer, resp *models.QueryResponse) error {
	grid := ProjectResponse(resp)

	cw := csv.NewWriter(w)
	if err := cw.Write(grid.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(grid.Cells); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
