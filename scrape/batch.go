package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/prodmeta"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Batch runs a ProductExtractor over a list of URLs and aggregates a report.
type Batch struct {
	Extractor prodmeta.ProductExtractor

	// Workers bounds concurrent extractions. Values <= 1 process URLs
	// sequentially in input order, pausing between them.
	Workers int

	// HostDelay, if positive, spaces concurrent requests to the same host
	// in addition to the batch delay. Ignored in sequential mode.
	HostDelay time.Duration

	// Progress, if set, receives events as the batch proceeds.
	// Calls are serialized.
	Progress ProgressFunc

	// Sleep pauses between URLs. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *slog.Logger
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	RunID     string
	Completed int
	Total     int
	URL       string

	// Outcome is set for ProgressCompleted and ProgressFailed.
	Outcome *prodmeta.Outcome

	// Duration is the time spent on URL, or on the whole batch for
	// ProgressFinished, or the pause length for ProgressWaiting.
	Duration time.Duration
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressWaiting
	ProgressFinished
)

func (t ProgressType) String() string {
	switch t {
	case ProgressStarted:
		return "started"
	case ProgressCompleted:
		return "completed"
	case ProgressFailed:
		return "failed"
	case ProgressWaiting:
		return "waiting"
	case ProgressFinished:
		return "finished"
	default:
		return fmt.Sprintf("ProgressType(%d)", int(t))
	}
}

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// ExtractBatch extracts every URL and returns a complete report. Results keep
// input order and duplicates are processed independently. A fault escaping
// the extractor becomes a failed outcome, so the batch always finishes.
// delay is the pause between consecutive URLs; values <= 0 disable pacing.
func (b *Batch) ExtractBatch(ctx context.Context, urls []string, cfg prodmeta.ProviderConfig, delay time.Duration) *prodmeta.Report {
	begin := time.Now()
	runID := uuid.NewString()
	logger := b.logger().With("run", runID)
	total := len(urls)

	logger.Info("batch started", "urls", total, "delay", delay, "workers", max(b.Workers, 1), "provider", cfg)

	var mu sync.Mutex
	emit := func(event ProgressEvent) {
		if b.Progress == nil {
			return
		}
		event.RunID = runID
		event.Total = total
		mu.Lock()
		defer mu.Unlock()
		b.Progress(event)
	}

	emit(ProgressEvent{Type: ProgressStarted})

	var outcomes []*prodmeta.Outcome
	if b.Workers > 1 && total > 1 {
		outcomes = b.concurrent(ctx, urls, cfg, delay, logger, emit)
	} else {
		outcomes = b.sequential(ctx, urls, cfg, delay, logger, emit)
	}

	report := prodmeta.NewReport(total)
	for _, o := range outcomes {
		report.Add(o)
	}
	if total > 0 {
		report.Summary.SuccessRate = float64(report.SuccessfulExtractions) / float64(total) * 100
	}
	elapsed := time.Since(begin)
	report.Summary.TotalProcessingTime = math.Round(elapsed.Seconds()*100) / 100

	emit(ProgressEvent{Type: ProgressFinished, Completed: total, Duration: elapsed})
	logger.Info("batch finished",
		"succeeded", report.SuccessfulExtractions,
		"failed", report.FailedExtractions,
		"duration", elapsed,
	)

	return report
}

func (b *Batch) sequential(ctx context.Context, urls []string, cfg prodmeta.ProviderConfig, delay time.Duration, logger *slog.Logger, emit ProgressFunc) []*prodmeta.Outcome {
	outcomes := make([]*prodmeta.Outcome, len(urls))
	for i, url := range urls {
		outcomes[i] = b.process(ctx, url, cfg, i+1, logger, emit)

		if delay > 0 && i < len(urls)-1 {
			emit(ProgressEvent{Type: ProgressWaiting, Completed: i + 1, Duration: delay})
			// A cancelled context only shortens the pause; the remaining
			// URLs still produce outcomes.
			_ = b.sleep(ctx, delay)
		}
	}
	return outcomes
}

func (b *Batch) concurrent(ctx context.Context, urls []string, cfg prodmeta.ProviderConfig, delay time.Duration, logger *slog.Logger, emit ProgressFunc) []*prodmeta.Outcome {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	limiter := rate.NewLimiter(limit, 1)
	var hosts *HostLimiter
	if b.HostDelay > 0 {
		hosts = NewHostLimiter(b.HostDelay)
	}

	outcomes := make([]*prodmeta.Outcome, len(urls))
	var completed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(b.Workers)
	for i, url := range urls {
		g.Go(func() error {
			_ = limiter.Wait(ctx)
			if hosts != nil {
				_ = hosts.Wait(ctx, url)
			}
			begin := time.Now()
			o := b.extract(ctx, url, cfg)
			outcomes[i] = o
			b.report(o, int(completed.Add(1)), time.Since(begin), logger, emit)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// process extracts one URL and reports it.
func (b *Batch) process(ctx context.Context, url string, cfg prodmeta.ProviderConfig, completed int, logger *slog.Logger, emit ProgressFunc) *prodmeta.Outcome {
	begin := time.Now()
	o := b.extract(ctx, url, cfg)
	b.report(o, completed, time.Since(begin), logger, emit)
	return o
}

func (b *Batch) report(o *prodmeta.Outcome, completed int, d time.Duration, logger *slog.Logger, emit ProgressFunc) {
	if o.Success {
		logger.Debug("extracted", "url", o.URL, "duration", d)
		emit(ProgressEvent{Type: ProgressCompleted, Completed: completed, URL: o.URL, Outcome: o, Duration: d})
		return
	}
	logger.Warn("extraction failed", "url", o.URL, "code", o.Code, "error", o.Error, "duration", d)
	emit(ProgressEvent{Type: ProgressFailed, Completed: completed, URL: o.URL, Outcome: o, Duration: d})
}

// extract calls the extractor, converting a panic or a nil outcome into an
// EUNEXPECTED failure.
func (b *Batch) extract(ctx context.Context, url string, cfg prodmeta.ProviderConfig) (o *prodmeta.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = prodmeta.Failed(url, prodmeta.EUNEXPECTED, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	o = b.Extractor.ExtractOne(ctx, url, cfg)
	if o == nil {
		return prodmeta.Failed(url, prodmeta.EUNEXPECTED, "unexpected error: no outcome returned")
	}
	return o
}

func (b *Batch) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		return b.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
