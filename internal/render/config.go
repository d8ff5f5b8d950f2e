package render

import (
	"os"

	"github.com/diogo/ayurchat/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of the
// user configuration. An empty or "auto" style follows the active TUI theme.
// GLAMOUR_STYLE, when set, wins over the configured style.
func OptionsFromConfig(md config.MarkdownConfig) Options {
	style := md.Style
	if style == "" || style == "auto" {
		style = GetTUITheme().MarkdownStyle
	}
	opts := DefaultOptions().WithStyle(style)
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
