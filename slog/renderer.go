package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with logging. When a TokenCounter is
// supplied, the size of the rendered text is reported in model tokens.
type LoggingRenderer struct {
	next    prodmeta.Renderer
	counter prodmeta.TokenCounter
	logger  *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer. counter may be nil.
func NewLoggingRenderer(next prodmeta.Renderer, counter prodmeta.TokenCounter, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, counter: counter, logger: logger}
}

// Render delegates to the wrapped renderer and logs the page it produced.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (page *prodmeta.Page, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if page != nil {
			attrs = append(attrs,
				"title", page.Title,
				"bytes", len(page.Markdown),
				"images", len(page.Images),
			)
			if r.counter != nil {
				if n, cerr := r.counter.CountTokens(ctx, page.Text()); cerr == nil {
					attrs = append(attrs, "tokens", n)
				}
			}
		}
		attrs = append(attrs, "err", err)
		r.logger.Info("render", attrs...)
	}(time.Now())
	return r.next.Render(ctx, url)
}
