package http

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.SitemapService = (*SitemapService)(nil)

// SitemapService discovers product URLs from shop sitemaps via HTTP.
type SitemapService struct {
	client *http.Client

	// UserAgent is sent with sitemap requests. Defaults to DefaultUserAgent.
	UserAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, UserAgent: DefaultUserAgent}
}

// DiscoverURLs returns the page URLs listed by a shop's sitemaps, de-duplicated
// in sitemap order. It never returns nil on success.
//
// A sitemapURL ending in ".xml" is read directly. Any other URL is treated as
// a site: sitemaps are located through robots.txt, falling back to
// /sitemap.xml, and when the URL has a path (e.g. https://shop.example.com/products/)
// only URLs under that path are kept. Sitemap indexes are followed, visiting
// product sitemaps (sitemap_products_1.xml, product-sitemap.xml) before the
// rest so a limited run reaches product pages first.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, filter *prodmeta.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(sitemapURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "invalid sitemap URL %q", sitemapURL)
	}

	var sitemaps []string
	var pathPrefix string
	if strings.HasSuffix(strings.ToLower(base.Path), ".xml") {
		sitemaps = []string{base.String()}
	} else {
		pathPrefix = strings.TrimSuffix(base.Path, "/")
		root := *base
		root.Path, root.RawQuery, root.Fragment = "", "", ""
		sitemaps, err = s.findSitemapURLs(ctx, &root)
		if err != nil {
			return nil, err
		}
		productSitemapsFirst(sitemaps)
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sm := range sitemaps {
		found, err := s.processSitemap(ctx, sm, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
				continue
			}
			if !filter.Match(u) {
				continue
			}
			urls = append(urls, u)
		}
	}

	return urls, nil
}

// matchesPathPrefix reports whether rawURL's path is prefix or lies below it.
// /products matches /products and /products/mug but not /products-sale.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Path == prefix || strings.HasPrefix(parsed.Path, prefix+"/")
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found".
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	resp, err := get(ctx, s.client, robotsURL, s.UserAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	resp, err := get(ctx, s.client, sitemapURL, s.UserAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML %s: %w", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}
	return locs(root, "url"), nil
}

// processSitemapIndex processes a <sitemapindex> element recursively.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var all []string
	children := locs(root, "sitemap")
	productSitemapsFirst(children)
	for _, sm := range children {
		urls, err := s.processSitemap(ctx, sm, seen)
		if err != nil {
			return nil, err
		}
		all = append(all, urls...)
	}
	return all, nil
}

// productSitemapsFirst stably moves sitemaps whose file name mentions
// products to the front.
func productSitemapsFirst(sitemaps []string) {
	slices.SortStableFunc(sitemaps, func(a, b string) int {
		pa, pb := isProductSitemap(a), isProductSitemap(b)
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		default:
			return 0
		}
	})
}

func isProductSitemap(rawURL string) bool {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	}
	name = strings.ToLower(name[strings.LastIndex(name, "/")+1:])
	return strings.Contains(name, "product")
}

// locs returns the non-empty <loc> values of root's child elements named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// urlExists checks if a URL answers a HEAD request with 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
