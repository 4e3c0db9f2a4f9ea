package mock

import (
	"context"

	"github.com/fwojciec/prodmeta"
)

// Compile-time interface verification.
var (
	_ prodmeta.Renderer         = (*Renderer)(nil)
	_ prodmeta.ContentExtractor = (*ContentExtractor)(nil)
	_ prodmeta.Converter        = (*Converter)(nil)
	_ prodmeta.ImageCollector   = (*ImageCollector)(nil)
	_ prodmeta.TokenCounter     = (*TokenCounter)(nil)
)

// Renderer is a mock implementation of prodmeta.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (*prodmeta.Page, error)
}

func (r *Renderer) Render(ctx context.Context, url string) (*prodmeta.Page, error) {
	return r.RenderFn(ctx, url)
}

// ContentExtractor is a mock implementation of prodmeta.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*prodmeta.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*prodmeta.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of prodmeta.Converter.
type Converter struct {
	ConvertFn func(html, baseURL string) (string, error)
}

func (c *Converter) Convert(html, baseURL string) (string, error) {
	return c.ConvertFn(html, baseURL)
}

// ImageCollector is a mock implementation of prodmeta.ImageCollector.
type ImageCollector struct {
	CollectImagesFn func(html, baseURL string) ([]string, error)
}

func (c *ImageCollector) CollectImages(html, baseURL string) ([]string, error) {
	return c.CollectImagesFn(html, baseURL)
}

// TokenCounter is a mock implementation of prodmeta.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return c.CountTokensFn(ctx, text)
}

var _ prodmeta.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of prodmeta.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *prodmeta.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *prodmeta.Page) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
