package mock

import (
	"context"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of prodmeta.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, sitemapURL string, filter *prodmeta.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, filter *prodmeta.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, sitemapURL, filter)
}

var _ prodmeta.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of prodmeta.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}
