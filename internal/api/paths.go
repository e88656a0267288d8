// Package api provides the nl-query service client implementation.
package api

// GJSON paths for the fields of a success payload.
const (
	PathSQL       = "sql"
	PathColumns   = "columns"
	PathRows      = "rows"
	PathRawAnswer = "raw_answer"
	PathSummary   = "summary"
)

// GJSON paths tried, in order, to extract a message from a structured error body.
// FastAPI reports errors as {"detail": "..."}.
var errorMessagePaths = []string{"detail", "error", "message"}

// maxBodySize bounds how much of a response body is read
const maxBodySize = 32 << 20
