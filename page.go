package prodmeta

import (
	"context"
	"strings"
)

// Page is a rendered product page ready for language model consumption.
type Page struct {
	URL      string
	Title    string
	Markdown string

	// Description is the page's own summary (meta description or lead
	// paragraph). It is often the only place a product's pitch appears.
	Description string

	// Images holds absolute image URLs harvested from the page markup,
	// including ones the markdown conversion cannot see (srcset, data-zoom).
	Images []string
}

// Text returns the content handed to the extractor: the title as a heading,
// the description unless the body already contains it, the markdown body and
// a list of harvested image URLs.
func (p *Page) Text() string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString("# ")
		b.WriteString(p.Title)
		b.WriteString("\n\n")
	}
	if desc := strings.TrimSpace(p.Description); desc != "" && !strings.Contains(p.Markdown, desc) {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(p.Markdown))
	if len(p.Images) > 0 {
		b.WriteString("\n\n## Image URLs\n\n")
		for _, img := range p.Images {
			b.WriteString("- ")
			b.WriteString(img)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Renderer turns a URL into page text.
// Implementations may retry internally; callers treat Render as one atomic call.
type Renderer interface {
	Render(ctx context.Context, url string) (*Page, error)
}

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL and returns the HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML. Empty when the
	// extractor found too little content to trust.
	ContentHTML string

	// Description is the page summary from metadata, if any.
	Description string
}

// ContentExtractor strips boilerplate (navigation, footers, ads) from HTML.
type ContentExtractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML into Markdown. Relative links and images are
	// resolved against baseURL when it is non-empty.
	Convert(html, baseURL string) (string, error)
}

// ImageCollector harvests image URLs from HTML.
type ImageCollector interface {
	// CollectImages returns absolute, de-duplicated image URLs in document order.
	CollectImages(html, baseURL string) ([]string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// PageStore archives rendered pages with atomic update semantics.
// Pages are staged by Save and published together by Commit.
type PageStore interface {
	Save(ctx context.Context, page *Page) error

	// Commit publishes all saved pages, replacing any previous archive.
	Commit() error

	// Abort discards all saved pages.
	Abort() error
}
