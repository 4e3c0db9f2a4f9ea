package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fwojciec/prodmeta"
	pmfs "github.com/fwojciec/prodmeta/fs"
	"github.com/fwojciec/prodmeta/scrape"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if len(c.URLs) == 0 && c.File == "" && c.Sitemap == "" {
		return prodmeta.Errorf(prodmeta.EINVALID, "no URLs given: pass URLs, --file or --sitemap")
	}

	cfg := prodmeta.ProviderConfig{
		Provider: c.Provider,
		APIToken: c.APIToken,
		BaseURL:  c.BaseURL,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: set PRODMETA_API_TOKEN or GEMINI_API_KEY, or pass --api-token. Get a key at https://aistudio.google.com/apikey")
		return err
	}

	urls, err := c.collectURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prodmeta.ErrorMessage(err))
		return err
	}

	batch := &scrape.Batch{
		Extractor: deps.Scraper,
		Workers:   c.Workers,
		HostDelay: c.HostDelay,
		Progress:  progressPrinter(deps),
		Logger:    deps.Logger,
	}
	if deps.Store != nil {
		if err := deps.Store.Abort(); err != nil {
			deps.Logger.Warn("discard staged pages", "err", err)
		}
	}
	report := batch.ExtractBatch(deps.Ctx, urls, cfg, c.Delay)
	if deps.Store != nil {
		finishArchive(deps, report)
	}

	if c.Output != "" {
		if err := pmfs.WriteReport(c.Output, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Report written to %s\n", c.Output)
	} else if err := pmfs.EncodeReport(deps.Stdout, report); err != nil {
		return err
	}

	if deps.Metrics != nil {
		if err := deps.Metrics.WriteTextfile(c.Metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	fmt.Fprintf(deps.Stderr, "Extracted %d/%d products (%.1f%%) in %.2fs\n",
		report.SuccessfulExtractions, report.TotalURLs,
		report.Summary.SuccessRate, report.Summary.TotalProcessingTime)

	return nil
}

// finishArchive publishes the pages staged by this run, or discards them when
// the run was cancelled or processed nothing.
func finishArchive(deps *Dependencies, report *prodmeta.Report) {
	if deps.Ctx.Err() != nil || report.TotalURLs == 0 {
		if err := deps.Store.Abort(); err != nil {
			deps.Logger.Warn("discard staged pages", "err", err)
		}
		return
	}
	if err := deps.Store.Commit(); err != nil {
		deps.Logger.Warn("archive pages", "err", err)
		_ = deps.Store.Abort()
	}
}

// collectURLs concatenates positional URLs, the --file list and sitemap
// discovery, in that order.
func (c *ExtractCmd) collectURLs(deps *Dependencies) ([]string, error) {
	urls := []string{}
	for _, u := range c.URLs {
		urls = append(urls, prodmeta.ParseURLs(u)...)
	}

	if c.File != "" {
		text, err := readURLFile(c.File, deps.Stdin)
		if err != nil {
			return nil, err
		}
		urls = append(urls, prodmeta.ParseURLs(text)...)
	}

	if c.Sitemap != "" {
		filter, err := prodmeta.CompileFilter(c.Filter, c.Exclude)
		if err != nil {
			return nil, err
		}
		found, err := discover(deps, c.Sitemap, filter, c.Links)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	return limit(urls, c.Limit), nil
}

func readURLFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		if stdin == nil {
			return "", prodmeta.Errorf(prodmeta.EINVALID, "stdin not available")
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", prodmeta.Errorf(prodmeta.ENOTFOUND, "URL file not found: %s", path)
	} else if err != nil {
		return "", err
	}
	return string(b), nil
}

// progressPrinter reports batch progress on stderr and feeds metrics.
func progressPrinter(deps *Dependencies) scrape.ProgressFunc {
	return func(event scrape.ProgressEvent) {
		deps.Metrics.Observe(event)

		switch event.Type {
		case scrape.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Extracting %d URLs\n", event.Total)
		case scrape.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] ok   %s\n", event.Completed, event.Total, event.URL)
		case scrape.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] fail %s: %s\n", event.Completed, event.Total, event.URL, event.Outcome.Error)
		}
	}
}
