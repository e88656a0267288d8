// Package form holds the console's freeform input fields.
package form

import (
	"strings"

	"github.com/diogo/nlq/internal/models"
)

// Field identifies one of the input fields
type Field int

const (
	FieldLocator Field = iota
	FieldQuestion
)

// String returns the field name as shown to the user
func (f Field) String() string {
	switch f {
	case FieldLocator:
		return "database"
	case FieldQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// Defaults are the fixed request parameters of a deployment
type Defaults struct {
	Dialect   models.Dialect
	MaxTokens int
}

// State captures the two input fields. Only presence is checked.
type State struct {
	Locator  string
	Question string
}

// Set replaces the value of f
func (s *State) Set(f Field, value string) {
	switch f {
	case FieldLocator:
		s.Locator = value
	case FieldQuestion:
		s.Question = value
	}
}

// Value returns the value of f
func (s State) Value(f Field) string {
	switch f {
	case FieldLocator:
		return s.Locator
	case FieldQuestion:
		return s.Question
	default:
		return ""
	}
}

// Missing returns the fields that are blank after trimming
func (s State) Missing() []Field {
	var missing []Field
	if strings.TrimSpace(s.Locator) == "" {
		missing = append(missing, FieldLocator)
	}
	if strings.TrimSpace(s.Question) == "" {
		missing = append(missing, FieldQuestion)
	}
	return missing
}

// Valid reports whether both fields are present
func (s State) Valid() bool {
	return len(s.Missing()) == 0
}

// Request builds a fresh QueryRequest from the fields and deployment defaults
func (s State) Request(d Defaults) models.QueryRequest {
	return models.QueryRequest{
		Locator:   s.Locator,
		Question:  s.Question,
		Dialect:   d.Dialect,
		MaxTokens: d.MaxTokens,
	}.Normalized()
}
