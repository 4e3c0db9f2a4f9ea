package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging. A discovery
// that succeeds but yields no product URLs is logged at Warn, since it usually
// means the filter does not match the shop's URL scheme.
type LoggingSitemapService struct {
	next   prodmeta.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next prodmeta.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *prodmeta.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err == nil && len(urls) == 0 {
			level = slog.LevelWarn
		}
		attrs := []any{"url", baseURL, "count", len(urls)}
		if filter != nil {
			attrs = append(attrs, "include", len(filter.Include), "exclude", len(filter.Exclude))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Log(ctx, level, "discover", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
