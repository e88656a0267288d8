package api

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/nlq/internal/errors"
	"github.com/diogo/nlq/internal/models"
)

// ParseQueryResponse validates a raw success payload and normalizes it into a
// QueryResponse. It fails with an InvalidResponse error naming the first
// offending field. Cell values are not coerced.
func ParseQueryResponse(raw []byte) (*models.QueryResponse, error) {
	if !gjson.ValidBytes(raw) {
		return nil, apierrors.NewInvalidResponseError("", "body is not valid JSON")
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, apierrors.NewInvalidResponseError("", "body must be a JSON object")
	}

	resp := &models.QueryResponse{}

	sql := parsed.Get(PathSQL)
	if !sql.Exists() {
		return nil, apierrors.NewInvalidResponseError(PathSQL, "missing")
	}
	if sql.Type != gjson.String {
		return nil, apierrors.NewInvalidResponseError(PathSQL, "must be a string")
	}
	resp.GeneratedQuery = sql.String()

	columns, err := parseColumns(parsed.Get(PathColumns))
	if err != nil {
		return nil, err
	}
	resp.Columns = columns

	rows, err := parseRows(parsed.Get(PathRows))
	if err != nil {
		return nil, err
	}
	resp.Rows = rows

	if resp.RawAnswer, err = optionalString(parsed.Get(PathRawAnswer), PathRawAnswer); err != nil {
		return nil, err
	}
	if resp.Summary, err = optionalString(parsed.Get(PathSummary), PathSummary); err != nil {
		return nil, err
	}

	return resp, nil
}

func parseColumns(value gjson.Result) ([]string, error) {
	if !value.Exists() {
		return nil, apierrors.NewInvalidResponseError(PathColumns, "missing")
	}
	if !value.IsArray() {
		return nil, apierrors.NewInvalidResponseError(PathColumns, "must be an array of strings")
	}

	items := value.Array()
	columns := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", PathColumns, i)
		if item.Type != gjson.String {
			return nil, apierrors.NewInvalidResponseError(field, "must be a string")
		}
		name := item.String()
		if _, dup := seen[name]; dup {
			return nil, apierrors.NewInvalidResponseError(field, fmt.Sprintf("duplicate column %q", name))
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}
	return columns, nil
}

func parseRows(value gjson.Result) ([]models.Row, error) {
	if !value.Exists() {
		return nil, apierrors.NewInvalidResponseError(PathRows, "missing")
	}
	if !value.IsArray() {
		return nil, apierrors.NewInvalidResponseError(PathRows, "must be an array of objects")
	}

	items := value.Array()
	rows := make([]models.Row, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, apierrors.NewInvalidResponseError(fmt.Sprintf("%s[%d]", PathRows, i), "must be an object")
		}

		row := make(models.Row)
		var cellErr error
		// ForEach instead of Get: column names may contain gjson path syntax
		item.ForEach(func(key, cell gjson.Result) bool {
			v, ok := cellValue(cell)
			if !ok {
				cellErr = apierrors.NewInvalidResponseError(
					fmt.Sprintf("%s[%d].%s", PathRows, i, key.String()),
					"cell must be a scalar or null",
				)
				return false
			}
			row[key.String()] = v
			return true
		})
		if cellErr != nil {
			return nil, cellErr
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue maps a JSON scalar to the cell union; objects and arrays are rejected
func cellValue(cell gjson.Result) (models.Value, bool) {
	switch cell.Type {
	case gjson.Null:
		return models.NullValue(), true
	case gjson.String:
		return models.StringValue(cell.String()), true
	case gjson.Number:
		return models.NumberValue(strings.TrimSpace(cell.Raw)), true
	case gjson.True:
		return models.BoolValue(true), true
	case gjson.False:
		return models.BoolValue(false), true
	default:
		return models.Value{}, false
	}
}

func optionalString(value gjson.Result, field string) (*string, error) {
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}
	if value.Type != gjson.String {
		return nil, apierrors.NewInvalidResponseError(field, "must be a string or null")
	}
	s := value.String()
	return &s, nil
}

// errorMessage extracts the user-facing message from a non-2xx body: the
// detail/error/message string of a structured body, the visible text of an
// HTML error page, otherwise the body text. It returns "" when the body is
// empty.
func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	if gjson.Valid(text) {
		parsed := gjson.Parse(text)
		if parsed.IsObject() {
			for _, path := range errorMessagePaths {
				if msg := parsed.Get(path); msg.Type == gjson.String && msg.String() != "" {
					return msg.String()
				}
			}
		}
		if parsed.Type == gjson.String && parsed.String() != "" {
			return parsed.String()
		}
	}

	if isHTMLDocument(text) {
		if visible := htmlText(text); visible != "" {
			return visible
		}
	}

	return text
}

var (
	errorPagePolicyOnce sync.Once
	errorPagePolicy     *bluemonday.Policy
)

// isHTMLDocument reports whether body is a whole HTML page, as sent by
// proxies in front of the service
func isHTMLDocument(body string) bool {
	lower := strings.ToLower(body)
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

// htmlText returns the visible text of an HTML page on one line
func htmlText(page string) string {
	errorPagePolicyOnce.Do(func() {
		errorPagePolicy = bluemonday.StrictPolicy()
		errorPagePolicy.AddSpaceWhenStrippingTag(true)
	})
	visible := html.UnescapeString(errorPagePolicy.Sanitize(page))
	return strings.Join(strings.Fields(visible), " ")
}
