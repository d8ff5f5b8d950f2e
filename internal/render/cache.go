package render

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererCache keeps idle glamour renderers per option set.
// A TermRenderer must not Render from two goroutines at once, so every
// call borrows its own renderer and hands it back when done.
type rendererCache struct {
	mu   sync.Mutex
	sets map[Options]*rendererSet
}

// rendererSet is the idle renderers for one option set. The style is
// resolved once when the set is created; a style that fails to resolve
// keeps failing until the cache is cleared.
type rendererSet struct {
	options  []glamour.TermRendererOption
	styleErr error
	idle     sync.Pool
}

var answerRenderers = newRendererCache()

func newRendererCache() *rendererCache {
	return &rendererCache{sets: make(map[Options]*rendererSet)}
}

// normalize maps equivalent option sets onto one cache entry
func normalize(opts Options) Options {
	if opts.Style == "" {
		opts.Style = ThemeDark
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}
	return opts
}

func (c *rendererCache) set(opts Options) *rendererSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sets[opts]; ok {
		return s
	}
	s := newRendererSet(opts)
	c.sets[opts] = s
	return s
}

// borrow returns a renderer for opts and the func that gives it back
func (c *rendererCache) borrow(opts Options) (*glamour.TermRenderer, func(), error) {
	s := c.set(normalize(opts))
	if s.styleErr != nil {
		return nil, nil, s.styleErr
	}

	r, ok := s.idle.Get().(*glamour.TermRenderer)
	if !ok {
		var err error
		if r, err = glamour.NewTermRenderer(s.options...); err != nil {
			return nil, nil, err
		}
	}
	return r, func() { s.idle.Put(r) }, nil
}

func (c *rendererCache) reset() {
	c.mu.Lock()
	c.sets = make(map[Options]*rendererSet)
	c.mu.Unlock()
}

func (c *rendererCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}

func newRendererSet(opts Options) *rendererSet {
	style, err := styleOption(opts.Style)
	if err != nil {
		return &rendererSet{styleErr: err}
	}

	s := &rendererSet{
		options: []glamour.TermRendererOption{
			style,
			glamour.WithWordWrap(opts.Width),
			glamour.WithTableWrap(opts.TableWrap),
			glamour.WithInlineTableLinks(opts.InlineTableLinks),
		},
	}
	if opts.EnableEmoji {
		s.options = append(s.options, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		s.options = append(s.options, glamour.WithPreservedNewLines())
	}
	return s
}

// styleOption resolves a built-in theme name or reads a glamour JSON style file
func styleOption(style string) (glamour.TermRendererOption, error) {
	if cfg, ok := builtinStyle(style); ok {
		return glamour.WithStyles(cfg), nil
	}
	data, err := os.ReadFile(style)
	if err != nil {
		return nil, fmt.Errorf("markdown style %q: %w", style, err)
	}
	return glamour.WithStylesFromJSONBytes(data), nil
}

// createRenderer builds a renderer outside the cache
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	s := newRendererSet(normalize(opts))
	if s.styleErr != nil {
		return nil, s.styleErr
	}
	return glamour.NewTermRenderer(s.options...)
}

// ClearCache drops all cached renderers and resolved styles.
func ClearCache() {
	answerRenderers.reset()
}

// CacheSize returns the number of option sets with cached renderers.
func CacheSize() int {
	return answerRenderers.size()
}
