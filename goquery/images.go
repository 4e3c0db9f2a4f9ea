package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.ImageCollector = (*ImageCollector)(nil)

// DefaultImageLimit caps the number of image URLs returned per page.
const DefaultImageLimit = 50

// imageAttrs are the <img> attributes that carry a single image URL, in
// preference order. Lazy loaders and zoom widgets keep the full size image
// out of src.
var imageAttrs = []string{
	"data-zoom-image",
	"data-old-hires",
	"data-large_image",
	"data-src",
	"src",
}

// ImageCollector harvests product image URLs from HTML.
type ImageCollector struct {
	// Limit caps the result size. Zero means DefaultImageLimit.
	Limit int
}

// NewImageCollector creates a new ImageCollector.
func NewImageCollector() *ImageCollector {
	return &ImageCollector{}
}

// CollectImages returns absolute http(s) image URLs from Open Graph and
// Twitter meta tags, image_src links, <img> elements and <picture> sources.
// URLs are de-duplicated and kept in document order, meta images first.
func (c *ImageCollector) CollectImages(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "failed to parse HTML: %v", err)
	}

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultImageLimit
	}

	seen := make(map[string]struct{})
	images := []string{}
	add := func(raw string) {
		if len(images) >= limit {
			return
		}
		resolved := resolveImageURL(base, raw)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		images = append(images, resolved)
	}

	doc.Find(`meta[property="og:image"], meta[property="og:image:secure_url"], meta[name="twitter:image"]`).Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("content", ""))
	})
	doc.Find(`link[rel="image_src"]`).Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("href", ""))
	})

	doc.Find("img, picture source").Each(func(_ int, sel *goquery.Selection) {
		if isTrackingPixel(sel) {
			return
		}
		if goquery.NodeName(sel) == "img" {
			for _, attr := range imageAttrs {
				if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
					add(v)
					break
				}
			}
		}
		for _, attr := range []string{"srcset", "data-srcset"} {
			if v, ok := sel.Attr(attr); ok {
				add(largestCandidate(v))
			}
		}
	})

	return images, nil
}

// largestCandidate returns the last URL of a srcset, which by convention
// lists candidates from smallest to largest.
func largestCandidate(srcset string) string {
	var last string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			last = fields[0]
		}
	}
	return last
}

func isTrackingPixel(sel *goquery.Selection) bool {
	return sel.AttrOr("width", "") == "1" && sel.AttrOr("height", "") == "1"
}

// resolveImageURL makes raw absolute against base. It returns "" for inline
// data, non-HTTP schemes and unparseable values.
func resolveImageURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || isNonHTTPLink(raw) {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
