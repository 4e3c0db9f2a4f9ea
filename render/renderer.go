// Package render turns product page URLs into text for the extractor.
// It composes a Fetcher, an optional ContentExtractor, a Converter and an
// optional ImageCollector into a prodmeta.Renderer.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.Renderer = (*PageRenderer)(nil)

// PageRenderer fetches a page, reduces it to its main content, converts it to
// markdown and harvests image URLs from the full markup.
type PageRenderer struct {
	Fetcher   prodmeta.Fetcher
	Converter prodmeta.Converter

	// Content strips boilerplate before conversion. Nil converts the whole page.
	Content prodmeta.ContentExtractor

	// Images harvests image URLs. Nil leaves Page.Images empty.
	Images prodmeta.ImageCollector

	// RetryDelays are the waits between fetch attempts. Nil uses
	// DefaultRetryDelays; an empty slice disables retries.
	RetryDelays []time.Duration

	// Logf, if set, receives retry and degradation notices.
	Logf LogFunc
}

// Render fetches url and returns its page text.
func (r *PageRenderer) Render(ctx context.Context, url string) (*prodmeta.Page, error) {
	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, url, r.Fetcher.Fetch, r.Logf, delays)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	page := &prodmeta.Page{URL: url}

	content := html
	if r.Content != nil {
		extracted, err := r.Content.Extract(html)
		switch {
		case err != nil:
			r.logf("content extraction failed for %s, using full page: %v", url, err)
		case strings.TrimSpace(extracted.ContentHTML) == "":
			r.logf("no main content found for %s, using full page", url)
			page.Title = extracted.Title
			page.Description = extracted.Description
		default:
			content = extracted.ContentHTML
			page.Title = extracted.Title
			page.Description = extracted.Description
		}
	}

	markdown, err := r.Converter.Convert(content, url)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	page.Markdown = markdown

	if r.Images != nil {
		images, err := r.Images.CollectImages(html, url)
		if err != nil {
			r.logf("image collection failed for %s: %v", url, err)
		}
		page.Images = images
	}

	return page, nil
}

func (r *PageRenderer) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}
