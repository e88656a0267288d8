package render

import (
	"os"

	"github.com/diogo/nlq/internal/config"
)

// OptionsFromConfig builds render options from a resolved configuration.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	md := cfg.Markdown
	opts := DefaultOptions().
		WithEmoji(md.EnableEmoji).
		WithPreserveNewLines(md.PreserveNewLines).
		WithTableWrap(md.TableWrap).
		WithInlineTableLinks(md.InlineTableLinks)

	if md.Style != "" {
		opts = opts.WithStyle(md.Style)
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts = opts.WithStyle(style)
	}
	return opts
}
