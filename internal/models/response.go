package models

import (
	"encoding/json"
	"strconv"
)

// ValueKind tags the variant held by a Value
type ValueKind int

const (
	// ValueAbsent means the row had no entry for the column
	ValueAbsent ValueKind = iota
	ValueNull
	ValueString
	ValueNumber
	ValueBool
)

// Value is a single result cell. Numbers keep the literal text sent by the
// server so that no precision or formatting is lost.
type Value struct {
	Kind ValueKind
	Str  string // ValueString: the string, ValueNumber: the literal
	Bool bool
}

// StringValue returns a string cell
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// NumberValue returns a number cell from its literal text
func NumberValue(literal string) Value { return Value{Kind: ValueNumber, Str: literal} }

// BoolValue returns a boolean cell
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// NullValue returns an explicit null cell
func NullValue() Value { return Value{Kind: ValueNull} }

// Present reports whether the cell holds a non-null scalar
func (v Value) Present() bool {
	return v.Kind != ValueAbsent && v.Kind != ValueNull
}

// Text returns the display text of the cell; null and absent cells are ""
func (v Value) Text() string {
	switch v.Kind {
	case ValueString, ValueNumber:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Interface returns the cell as a plain Go value for encoders: nil, string,
// bool, int64 or float64. Number literals that do not fit either numeric type
// are returned as json.Number.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		return v.Bool
	case ValueNumber:
		if i, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
			return f
		}
		return json.Number(v.Str)
	default:
		return nil
	}
}

// MarshalJSON writes the cell back as it was received
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return []byte(v.Str), nil
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// Row maps column names to cells. Keys not listed in the response columns are
// carried but never rendered.
type Row map[string]Value

// Get returns the cell for column, or an absent Value
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Value{Kind: ValueAbsent}
}

// QueryResponse is a validated success payload
type QueryResponse struct {
	GeneratedQuery string
	Columns        []string
	Rows           []Row
	RawAnswer      *string
	Summary        *string
}

// HasSummary reports whether a summary was sent
func (r *QueryResponse) HasSummary() bool {
	return r != nil && r.Summary != nil
}

// RowCount returns the number of rows, 0 for a nil response
func (r *QueryResponse) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}
