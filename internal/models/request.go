package models

import "strings"

// QueryRequest is the body sent to the nl-query endpoint. A new one is built
// for every submission.
type QueryRequest struct {
	Locator   string  `json:"db_path"`
	Question  string  `json:"question"`
	Dialect   Dialect `json:"dialect"`
	MaxTokens int     `json:"max_tokens"`
}

// Normalized returns a copy with locator and question trimmed
func (r QueryRequest) Normalized() QueryRequest {
	r.Locator = strings.TrimSpace(r.Locator)
	r.Question = strings.TrimSpace(r.Question)
	return r
}
