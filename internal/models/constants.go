// Package models contains data types and constants for the nl-query service.
package models

// Endpoint paths, relative to the configured service base URL
const (
	EndpointQuery  = "/nl-query"
	EndpointHealth = "/health"
)

// DefaultEndpoint is used when no endpoint is configured
const DefaultEndpoint = "http://127.0.0.1:8000"

// DefaultMaxTokens matches the service's default token budget for SQL generation
const DefaultMaxTokens = 512

// Dialect is the query-language flavor the backend should target
type Dialect string

// Known dialects
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectDuckDB   Dialect = "duckdb"
)

// DefaultDialect is the dialect used when none is configured
const DefaultDialect = DialectSQLite

// AllDialects returns a list of all known dialects
func AllDialects() []Dialect {
	return []Dialect{DialectSQLite, DialectPostgres, DialectMySQL, DialectDuckDB}
}

// Valid reports whether d is one of the known dialects
func (d Dialect) Valid() bool {
	for _, known := range AllDialects() {
		if d == known {
			return true
		}
	}
	return false
}

// DialectFromName returns the Dialect for name and whether it is known
func DialectFromName(name string) (Dialect, bool) {
	d := Dialect(name)
	return d, d.Valid()
}

// DefaultHeaders returns the default headers for service requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json, text/plain;q=0.9, */*;q=0.5",
		"User-Agent":   "nlq/" + ClientVersion,
	}
}

// ClientVersion is reported in the User-Agent header
var ClientVersion = "0.1.0"
