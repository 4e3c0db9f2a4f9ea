// Package readability adapts go-readability to prodmeta.ContentExtractor.
package readability

import (
	"strings"

	"github.com/fwojciec/prodmeta"
	"github.com/go-shiori/go-readability"
)

var _ prodmeta.ContentExtractor = (*Extractor)(nil)

// DefaultMinTextLength is the shortest article text, in bytes, trusted as the
// main content of a product page.
const DefaultMinTextLength = 120

// Extractor isolates the main content of a product page with go-readability.
//
// Readability is tuned for articles and tends to keep only a product's
// description block on shop pages. When the surviving text is shorter than
// MinTextLength the content is dropped so the renderer falls back to the full
// page, while the title and meta description are still reported.
type Extractor struct {
	// MinTextLength overrides DefaultMinTextLength when positive.
	MinTextLength int
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*prodmeta.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	result := &prodmeta.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
	}
	if len(strings.TrimSpace(article.TextContent)) >= e.minTextLength() {
		result.ContentHTML = article.Content
	}
	return result, nil
}

func (e *Extractor) minTextLength() int {
	if e.MinTextLength > 0 {
		return e.MinTextLength
	}
	return DefaultMinTextLength
}
