// Package render turns query results into terminal output: result grids,
// sanitized markdown summaries and machine-readable exports.
package render

// Options configures markdown rendering of summaries. Options is comparable
// and keys the renderer pools.
type Options struct {
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the options used when nothing is configured.
// Emoji shortcodes stay literal since summaries describe data.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}

func (o Options) WithPreserveNewLines(enabled bool) Options {
	o.PreserveNewLines = enabled
	return o
}

func (o Options) WithTableWrap(enabled bool) Options {
	o.TableWrap = enabled
	return o
}

func (o Options) WithInlineTableLinks(enabled bool) Options {
	o.InlineTableLinks = enabled
	return o
}
