package render

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	renderer, release, err := answerRenderers.borrow(opts)
	if err != nil {
		return "", err
	}
	defer release()

	return renderer.Render(content)
}

// Answer renders a backend answer. Escape sequences in the answer are
// stripped first so the backend cannot drive the terminal. On a render
// failure the sanitized text is returned unstyled.
func Answer(content string, opts Options) string {
	clean := Sanitize(content)
	out, err := Markdown(clean, opts)
	if err != nil {
		return clean
	}
	return strings.TrimRight(out, "\n")
}

// Sanitize removes ANSI escape sequences and other control bytes, keeping
// newlines and tabs.
func Sanitize(s string) string {
	s = xansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
