package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/prodmeta"
	"github.com/fwojciec/prodmeta/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger

	Sitemaps prodmeta.SitemapService
	Links    prodmeta.LinkExtractor

	// Pages fetches listing pages for link discovery.
	Pages prodmeta.Fetcher

	Scraper prodmeta.ProductExtractor
	Metrics *prometheus.Metrics
	Store   prodmeta.PageStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Extract  ExtractCmd  `cmd:"" help:"Extract product metadata from product page URLs"`
	Discover DiscoverCmd `cmd:"" help:"List product URLs from a site's sitemap"`
	Schema   SchemaCmd   `cmd:"" help:"Print the product JSON schema"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URLs    []string `arg:"" optional:"" name:"url" help:"Product page URLs"`
	File    string   `short:"f" help:"Read URLs from a file, one per line ('-' for stdin)"`
	Sitemap string   `help:"Also extract URLs discovered from this sitemap or site"`
	Filter  []string `short:"F" name:"filter" help:"Keep discovered URLs matching regex (repeatable)"`
	Exclude []string `short:"X" help:"Drop discovered URLs matching regex (repeatable)"`
	Links   bool     `help:"Fall back to links on the page when no sitemap is found"`
	Limit   int      `help:"Process at most this many URLs (0 for all)"`

	Delay     time.Duration `default:"1s" help:"Pause between URLs"`
	Workers   int           `short:"w" default:"1" help:"Concurrent extractions"`
	HostDelay time.Duration `name:"host-delay" help:"Minimum spacing between requests to the same shop when --workers > 1"`

	Provider string `default:"${provider}" env:"PRODMETA_PROVIDER" help:"Model provider as <backend>/<model>"`
	APIToken string `name:"api-token" env:"PRODMETA_API_TOKEN,GEMINI_API_KEY" help:"Provider API token"`
	BaseURL  string `name:"base-url" env:"PRODMETA_BASE_URL" help:"Override the provider API endpoint"`

	Fetcher string        `enum:"rod,http" default:"rod" help:"Page fetcher: rod (headless Chrome) or http"`
	Content string        `enum:"full,readability,trafilatura" default:"full" help:"Main content extraction: full, readability or trafilatura"`
	Timeout time.Duration `default:"30s" help:"Fetch timeout per page"`
	Retries int           `default:"3" help:"Fetch retries per page"`

	Output  string `short:"o" help:"Write the report to this file instead of stdout"`
	Metrics string `help:"Write Prometheus metrics to this textfile"`
	Pages   string `help:"Archive rendered pages as markdown under this directory"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL     string   `arg:"" help:"Sitemap URL or site root"`
	Filter  []string `short:"F" name:"filter" help:"Keep URLs matching regex (repeatable)"`
	Exclude []string `short:"X" help:"Drop URLs matching regex (repeatable)"`
	Links   bool     `help:"Fall back to links on the page when no sitemap is found"`
	Limit   int      `help:"Print at most this many URLs (0 for all)"`
}

// SchemaCmd is the "schema" subcommand.
type SchemaCmd struct{}
