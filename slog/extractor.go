package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. When a PromptCounter is
// supplied, the prompt size is also reported in model tokens.
type LoggingExtractor struct {
	next    prodmeta.Extractor
	counter prodmeta.PromptCounter
	logger  *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. counter may be nil.
func NewLoggingExtractor(next prodmeta.Extractor, counter prodmeta.PromptCounter, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, counter: counter, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the call. The API
// token is redacted by ProviderConfig's LogValue.
func (e *LoggingExtractor) Extract(ctx context.Context, cfg prodmeta.ProviderConfig, req *prodmeta.ExtractRequest) (raw string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", req.URL,
			"provider", cfg,
			"input_bytes", len(req.Content),
			"output_bytes", len(raw),
			"duration", time.Since(begin),
		}
		if e.counter != nil {
			if n, cerr := e.counter.CountRequest(ctx, req); cerr == nil {
				attrs = append(attrs, "prompt_tokens", n)
			}
		}
		attrs = append(attrs, "err", err)
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, cfg, req)
}
