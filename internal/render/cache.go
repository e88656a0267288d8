package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererPool keeps one sync.Pool of renderers per distinct Options.
// A glamour.TermRenderer must not serve two Render calls at once, so
// renderers are checked out rather than shared.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[Options]*sync.Pool
}

var globalPool = &rendererPool{
	pools: make(map[Options]*sync.Pool),
}

// poolKey normalizes opts so equivalent configurations share a pool.
func poolKey(opts Options) Options {
	if opts.Style == "" {
		opts.Style = ThemeDark
	}
	return opts
}

func (p *rendererPool) getPool(opts Options) *sync.Pool {
	key := poolKey(opts)

	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[key]; ok {
		return pool
	}

	pool = &sync.Pool{
		New: func() interface{} {
			renderer, err := createRenderer(key)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	p.pools[key] = pool
	return pool
}

// get checks a renderer out of the pool for opts.
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if renderer, ok := p.getPool(opts).Get().(*glamour.TermRenderer); ok && renderer != nil {
		return renderer, nil
	}
	// New failed; surface the error from a direct build
	return createRenderer(poolKey(opts))
}

func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer == nil {
		return
	}
	p.getPool(opts).Put(renderer)
}

// createRenderer builds a TermRenderer. Style is a glamour built-in style
// name or a path to a JSON style file.
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	style := opts.Style
	if style == "" {
		style = ThemeDark
	}

	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every renderer pool.
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[Options]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of renderer pools.
func CacheSize() int {
	globalPool.mu.RLock()
	defer globalPool.mu.RUnlock()
	return len(globalPool.pools)
}
