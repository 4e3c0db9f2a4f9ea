package mock

import (
	"context"

	"github.com/fwojciec/prodmeta"
)

var (
	_ prodmeta.Extractor        = (*Extractor)(nil)
	_ prodmeta.ProductExtractor = (*ProductExtractor)(nil)
)

// Extractor is a mock implementation of prodmeta.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, cfg prodmeta.ProviderConfig, req *prodmeta.ExtractRequest) (string, error)
}

func (e *Extractor) Extract(ctx context.Context, cfg prodmeta.ProviderConfig, req *prodmeta.ExtractRequest) (string, error) {
	return e.ExtractFn(ctx, cfg, req)
}

// ProductExtractor is a mock implementation of prodmeta.ProductExtractor.
type ProductExtractor struct {
	ExtractOneFn func(ctx context.Context, url string, cfg prodmeta.ProviderConfig) *prodmeta.Outcome
}

func (e *ProductExtractor) ExtractOne(ctx context.Context, url string, cfg prodmeta.ProviderConfig) *prodmeta.Outcome {
	return e.ExtractOneFn(ctx, url, cfg)
}

var _ prodmeta.PromptCounter = (*PromptCounter)(nil)

// PromptCounter is a mock implementation of prodmeta.PromptCounter.
type PromptCounter struct {
	CountRequestFn func(ctx context.Context, req *prodmeta.ExtractRequest) (int, error)
}

func (c *PromptCounter) CountRequest(ctx context.Context, req *prodmeta.ExtractRequest) (int, error) {
	return c.CountRequestFn(ctx, req)
}
