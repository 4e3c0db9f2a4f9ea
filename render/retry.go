package render

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/prodmeta"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return RetryDelays(3)
}

// RetryDelays returns n exponential backoff delays starting at one second.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	d := time.Second
	for range n {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// FetchWithRetry calls fetch until it succeeds, waiting delays[i] before
// retry i+1. An empty delays slice means a single attempt. Permanent errors
// (see IsPermanent) are returned without retrying. The context is checked
// before every wait; the last fetch error is returned when all attempts fail.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logf LogFunc, delays []time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(delays) || IsPermanent(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logf != nil {
			logf("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		t := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}

	return "", lastErr
}

// IsPermanent reports whether a fetch error cannot be fixed by retrying:
// invalid input (bad URL, closed fetcher) or a 4xx status other than 429.
func IsPermanent(err error) bool {
	if prodmeta.ErrorCode(err) == prodmeta.EINVALID {
		return true
	}
	var status *prodmeta.StatusError
	return errors.As(err, &status) && status.Permanent()
}
