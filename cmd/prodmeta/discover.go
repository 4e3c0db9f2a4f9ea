package main

import (
	"fmt"

	"github.com/fwojciec/prodmeta"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	filter, err := prodmeta.CompileFilter(c.Filter, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prodmeta.ErrorMessage(err))
		return err
	}

	urls, err := discover(deps, c.URL, filter, c.Links)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prodmeta.ErrorMessage(err))
		return err
	}
	urls = limit(urls, c.Limit)

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	if len(urls) == 0 {
		fmt.Fprintf(deps.Stderr, "no URLs found for %s\n", c.URL)
	}
	return nil
}

// discover lists URLs from the sitemap of target. When the sitemap yields
// nothing and links is set, same-host links on the target page are used.
func discover(deps *Dependencies, target string, filter *prodmeta.URLFilter, links bool) ([]string, error) {
	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, target, filter)
	if err != nil {
		return nil, err
	}
	if len(urls) > 0 || !links {
		return urls, nil
	}

	deps.Logger.Info("no sitemap URLs, collecting page links", "url", target)
	html, err := deps.Pages.Fetch(deps.Ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	found, err := deps.Links.ExtractLinks(html, target)
	if err != nil {
		return nil, err
	}

	urls = []string{}
	for _, u := range found {
		if filter.Match(u) {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func limit(urls []string, n int) []string {
	if n > 0 && len(urls) > n {
		return urls[:n]
	}
	return urls
}
