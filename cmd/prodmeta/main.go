package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/prodmeta"
	pmfs "github.com/fwojciec/prodmeta/fs"
	"github.com/fwojciec/prodmeta/gemini"
	"github.com/fwojciec/prodmeta/goquery"
	"github.com/fwojciec/prodmeta/htmltomarkdown"
	pmhttp "github.com/fwojciec/prodmeta/http"
	"github.com/fwojciec/prodmeta/prometheus"
	"github.com/fwojciec/prodmeta/readability"
	"github.com/fwojciec/prodmeta/render"
	"github.com/fwojciec/prodmeta/rod"
	"github.com/fwojciec/prodmeta/scrape"
	pmslog "github.com/fwojciec/prodmeta/slog"
	"github.com/fwojciec/prodmeta/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := NewMain()
	m.Stdin = os.Stdin

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, prodmeta.ErrorMessage(err))
		os.Exit(1)
	}
}

// loadEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Main represents the program.
type Main struct {
	// Stdin is read when --file is "-".
	Stdin io.Reader

	// Services for end-to-end testing. When nil, real implementations are
	// wired from the parsed flags.
	Fetcher   prodmeta.Fetcher
	Extractor prodmeta.Extractor
	Sitemaps  prodmeta.SitemapService
	Links     prodmeta.LinkExtractor
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  m.Stdin,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("prodmeta"),
		kong.Description("Extract structured product metadata from e-commerce product pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"provider": prodmeta.DefaultProvider},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'prodmeta --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Sitemaps = m.Sitemaps
	if deps.Sitemaps == nil {
		deps.Sitemaps = pmhttp.NewSitemapService(nil)
	}
	if cli.Verbose {
		deps.Sitemaps = pmslog.NewLoggingSitemapService(deps.Sitemaps, deps.Logger)
	}
	deps.Links = m.Links
	if deps.Links == nil {
		deps.Links = goquery.NewLinkExtractor()
	}

	switch kongCtx.Command() {
	case "discover <url>":
		fetcher := m.Fetcher
		if fetcher == nil {
			fetcher = pmhttp.NewFetcher()
		}
		defer fetcher.Close()
		deps.Pages = fetcher

	case "extract", "extract <url>":
		c := &cli.Extract

		fetcher, err := m.fetcher(c, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Pages = fetcher

		extractor := m.Extractor
		if extractor == nil {
			extractor, err = gemini.NewExtractor()
			if err != nil {
				return err
			}
		}

		var pageFetcher prodmeta.Fetcher = fetcher
		if cli.Verbose {
			pageFetcher = pmslog.NewLoggingFetcher(fetcher, deps.Logger)
		}

		var renderer prodmeta.Renderer = &render.PageRenderer{
			Fetcher:     pageFetcher,
			Converter:   htmltomarkdown.NewConverter(),
			Content:     contentExtractor(c.Content),
			Images:      goquery.NewImageCollector(),
			RetryDelays: render.RetryDelays(c.Retries),
			Logf: func(format string, args ...any) {
				deps.Logger.Debug(fmt.Sprintf(format, args...))
			},
		}
		if cli.Verbose {
			pages, prompts := tokenCounters(c.Provider, deps.Logger)
			renderer = pmslog.NewLoggingRenderer(renderer, pages, deps.Logger)
			extractor = pmslog.NewLoggingExtractor(extractor, prompts, deps.Logger)
		}
		if c.Pages != "" {
			store := pmfs.NewFileStore(c.Pages, "pages")
			renderer = pmfs.NewArchivingRenderer(renderer, store, deps.Logger)
			deps.Store = store
		}

		deps.Scraper = &scrape.Scraper{
			Renderer:  renderer,
			Extractor: extractor,
			Logger:    deps.Logger,
		}
		if c.Metrics != "" {
			deps.Metrics = prometheus.NewMetrics()
		}
	}

	return kongCtx.Run(deps)
}

// fetcher returns the injected Fetcher or builds the one selected by --fetcher.
func (m *Main) fetcher(c *ExtractCmd, stderr io.Writer) (prodmeta.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if c.Fetcher == "http" {
		return pmhttp.NewFetcher(pmhttp.WithTimeout(c.Timeout)), nil
	}
	f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout), rod.WithUserAgent(pmhttp.DefaultUserAgent))
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or use --fetcher=http")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return f, nil
}

func contentExtractor(mode string) prodmeta.ContentExtractor {
	switch mode {
	case "readability":
		return readability.NewExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	default:
		return nil
	}
}

// tokenCounters returns a local tokenizer for provider as page and prompt
// counters, or nils when the model is not supported by the tokenizer.
func tokenCounters(provider string, logger *slog.Logger) (prodmeta.TokenCounter, prodmeta.PromptCounter) {
	tc, err := gemini.NewTokenCounter(provider)
	if err != nil {
		logger.Debug("token counting disabled", "provider", provider, "err", err)
		return nil, nil
	}
	return tc, tc
}
