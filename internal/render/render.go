package render

import "strings"

// Markdown renders markdown content with a pooled renderer.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// SummaryText renders a summary for display. When the markdown renderer
// fails the source text is shown without control characters.
func SummaryText(summary *string, opts Options) string {
	out, err := Summary(summary, opts)
	if err == nil {
		return out
	}
	return strings.TrimSpace(StripControl(*summary))
}
