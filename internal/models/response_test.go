package models

import (
	"encoding/json"
	"testing"
)

// ============================================================================
// Value Tests
// ============================================================================

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", StringValue("Alice"), "Alice"},
		{"empty string", StringValue(""), ""},
		{"integer literal", NumberValue("1"), "1"},
		{"float literal kept", NumberValue("120.50"), "120.50"},
		{"exponent literal kept", NumberValue("1e3"), "1e3"},
		{"true", BoolValue(true), "true"},
		{"false", BoolValue(false), "false"},
		{"null", NullValue(), ""},
		{"absent", Value{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Present(t *testing.T) {
	if NullValue().Present() {
		t.Error("null should not be present")
	}
	if (Value{}).Present() {
		t.Error("absent should not be present")
	}
	if !StringValue("").Present() {
		t.Error("empty string is a present value")
	}
	if !BoolValue(false).Present() {
		t.Error("false is a present value")
	}
}

func TestValue_Interface(t *testing.T) {
	if got := NumberValue("42").Interface(); got != int64(42) {
		t.Errorf("Interface() = %#v, want int64(42)", got)
	}
	if got := NumberValue("2.5").Interface(); got != 2.5 {
		t.Errorf("Interface() = %#v, want 2.5", got)
	}
	if got := NullValue().Interface(); got != nil {
		t.Errorf("Interface() = %#v, want nil", got)
	}
	if got := StringValue("x").Interface(); got != "x" {
		t.Errorf("Interface() = %#v, want x", got)
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	row := map[string]Value{
		"n": NumberValue("120.50"),
		"s": StringValue("a\"b"),
		"b": BoolValue(true),
		"z": NullValue(),
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"b":true,"n":120.50,"s":"a\"b","z":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

// ============================================================================
// Row / QueryResponse Tests
// ============================================================================

func TestRow_Get(t *testing.T) {
	row := Row{"a": NumberValue("1"), "b": NullValue()}

	if got := row.Get("a"); got.Kind != ValueNumber {
		t.Errorf("Get(a).Kind = %v, want ValueNumber", got.Kind)
	}
	if got := row.Get("b"); got.Kind != ValueNull {
		t.Errorf("Get(b).Kind = %v, want ValueNull", got.Kind)
	}
	if got := row.Get("missing"); got.Kind != ValueAbsent {
		t.Errorf("Get(missing).Kind = %v, want ValueAbsent", got.Kind)
	}
}

func TestQueryResponse_NilSafe(t *testing.T) {
	var resp *QueryResponse
	if resp.HasSummary() {
		t.Error("nil response has no summary")
	}
	if resp.RowCount() != 0 {
		t.Error("nil response has no rows")
	}
}

// ============================================================================
// Request / Dialect Tests
// ============================================================================

func TestQueryRequest_JSON(t *testing.T) {
	req := QueryRequest{
		Locator:   "sample.db",
		Question:  "How many customers?",
		Dialect:   DialectSQLite,
		MaxTokens: 512,
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"db_path":"sample.db","question":"How many customers?","dialect":"sqlite","max_tokens":512}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestQueryRequest_Normalized(t *testing.T) {
	req := QueryRequest{Locator: "  sample.db\n", Question: "\tcount rows "}.Normalized()
	if req.Locator != "sample.db" || req.Question != "count rows" {
		t.Errorf("Normalized() = %+v", req)
	}
}

func TestDialectFromName(t *testing.T) {
	for _, d := range AllDialects() {
		if got, ok := DialectFromName(string(d)); !ok || got != d {
			t.Errorf("DialectFromName(%q) = %q, %v", d, got, ok)
		}
	}
	if _, ok := DialectFromName("oracle"); ok {
		t.Error("oracle should not be a known dialect")
	}
	if _, ok := DialectFromName(""); ok {
		t.Error("empty dialect should not be known")
	}
}
