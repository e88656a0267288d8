package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/diogo/nlq/internal/models"
)

func salesResponse() *models.QueryResponse {
	raw := "[(north, 10), (south, None)]"
	return &models.QueryResponse{
		GeneratedQuery: "SELECT region, total FROM sales",
		Columns:        []string{"region", "total"},
		Rows: []models.Row{
			{"region": models.StringValue("north"), "total": models.NumberValue("10.50"), "extra": models.BoolValue(true)},
			{"region": models.StringValue("south")},
		},
		RawAnswer: &raw,
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, salesResponse()); err != nil {
		t.Fatalf("WriteJSON() returned error: %v", err)
	}

	// numbers are written back as sent
	if !strings.Contains(buf.String(), "10.50") {
		t.Errorf("number literal not preserved:\n%s", buf.String())
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var got map[string]interface{}
	if err := dec.Decode(&got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	want := map[string]interface{}{
		"sql":     "SELECT region, total FROM sales",
		"columns": []interface{}{"region", "total"},
		"rows": []interface{}{
			map[string]interface{}{"region": "north", "total": json.Number("10.50")},
			map[string]interface{}{"region": "south", "total": nil},
		},
		"raw_answer": "[(north, 10), (south, None)]",
		"summary":    nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WriteJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.QueryResponse{GeneratedQuery: "SELECT 1 WHERE 0"}
	if err := WriteJSON(&buf, resp); err != nil {
		t.Fatalf("WriteJSON() returned error: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if diff := cmp.Diff([]interface{}{}, got["columns"]); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{}, got["rows"]); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, salesResponse()); err != nil {
		t.Fatalf("WriteYAML() returned error: %v", err)
	}
	out := buf.String()

	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}

	want := map[string]interface{}{
		"sql":     "SELECT region, total FROM sales",
		"columns": []interface{}{"region", "total"},
		"rows": []interface{}{
			map[string]interface{}{"region": "north", "total": 10.5},
			map[string]interface{}{"region": "south", "total": nil},
		},
		"raw_answer": "[(north, 10), (south, None)]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WriteYAML() mismatch (-want +got):\n%s", diff)
	}

	if strings.Index(out, "region: north") > strings.Index(out, "total:") {
		t.Errorf("row keys should follow column order:\n%s", out)
	}
	if strings.Contains(out, "extra") {
		t.Errorf("keys outside columns should be dropped:\n%s", out)
	}
	if strings.Contains(out, "summary") {
		t.Errorf("missing summary should be omitted:\n%s", out)
	}
}

func TestWriteYAML_KeysStayStrings(t *testing.T) {
	resp := &models.QueryResponse{
		GeneratedQuery: "SELECT 1 AS \"true\"",
		Columns:        []string{"true", "1"},
		Rows:           []models.Row{{"true": models.StringValue("yes"), "1": models.StringValue("no")}},
	}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, resp); err != nil {
		t.Fatalf("WriteYAML() returned error: %v", err)
	}

	var got struct {
		Rows []map[string]string `yaml:"rows"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff([]map[string]string{{"true": "yes", "1": "no"}}, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, salesResponse()); err != nil {
		t.Fatalf("WriteCSV() returned error: %v", err)
	}

	want := "region,total\nnorth,10.50\nsouth,\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_Quoting(t *testing.T) {
	resp := &models.QueryResponse{
		Columns: []string{"name"},
		Rows:    []models.Row{{"name": models.StringValue("Smith, \"Jr\"")}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, resp); err != nil {
		t.Fatalf("WriteCSV() returned error: %v", err)
	}
	want := "name\n\"Smith, \"\"Jr\"\"\"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV() mismatch (-want +got):\n%s", diff)
	}
}
