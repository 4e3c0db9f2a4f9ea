// Package trafilatura adapts go-trafilatura to prodmeta.ContentExtractor.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/prodmeta"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ prodmeta.ContentExtractor = (*Extractor)(nil)

// DefaultMinTextLength is the shortest extracted text, in bytes, trusted as the
// main content of a product page.
const DefaultMinTextLength = 80

// Extractor isolates the main content of a product page with go-trafilatura.
// Images are kept so gallery markup survives into the converted text, while
// comment sections (usually customer reviews) are dropped.
type Extractor struct {
	// MinTextLength overrides DefaultMinTextLength when positive.
	MinTextLength int

	// KeepReviews retains comment sections in the extracted content.
	KeepReviews bool
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Content shorter
// than the minimum length is left empty so callers fall back to the full page.
func (e *Extractor) Extract(rawHTML string) (*prodmeta.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback:  true,
		IncludeImages:   true,
		ExcludeComments: !e.KeepReviews,
		Deduplicate:     true,
	})
	if err != nil {
		return nil, err
	}

	out := &prodmeta.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
	}
	if result.ContentNode == nil || len(strings.TrimSpace(result.ContentText)) < e.minTextLength() {
		return out, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}
	out.ContentHTML = buf.String()
	return out, nil
}

func (e *Extractor) minTextLength() int {
	if e.MinTextLength > 0 {
		return e.MinTextLength
	}
	return DefaultMinTextLength
}
