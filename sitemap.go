package prodmeta

import (
	"context"
	"regexp"
	"strings"
)

// SitemapService discovers product URLs from a shop's sitemaps.
type SitemapService interface {
	// DiscoverURLs returns page URLs listed by the sitemap at sitemapURL.
	// If sitemapURL has no path, robots.txt and /sitemap.xml are consulted.
	// Sitemap indexes are followed. A nil filter returns every URL.
	DiscoverURLs(ctx context.Context, sitemapURL string, filter *URLFilter) ([]string, error)
}

// URLFilter selects URLs by pattern.
type URLFilter struct {
	// Include patterns: if set, a URL must match at least one.
	Include []*regexp.Regexp

	// Exclude patterns: a URL matching any of them is dropped.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter. A nil filter passes everything.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 && !matchAny(f.Include, url) {
		return false
	}

	return !matchAny(f.Exclude, url)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// CompileFilter builds a URLFilter from include and exclude patterns.
// It returns nil when both lists are empty.
func CompileFilter(include, exclude []string) (*URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	f := &URLFilter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid include pattern %q: %v", p, err)
		}
		f.Include = append(f.Include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		f.Exclude = append(f.Exclude, re)
	}
	return f, nil
}

// ParseURLs splits newline-separated text into URLs, trimming whitespace
// and discarding blank lines. Order and duplicates are preserved.
func ParseURLs(text string) []string {
	urls := []string{}
	for _, line := range strings.Split(text, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// LinkExtractor collects candidate product links from a listing page.
type LinkExtractor interface {
	// ExtractLinks returns absolute same-host link URLs found in html.
	ExtractLinks(html, baseURL string) ([]string, error)
}
