package render_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/prodmeta"
	"github.com/fwojciec/prodmeta/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelays is used for fast unit tests.
var noDelays = []time.Duration{0, 0, 0}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "<html>content</html>", nil
		}

		html, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on failure and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			if attempts < 4 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		html, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>success</html>", html)
		assert.Equal(t, 4, attempts)
	})

	t.Run("returns last error after max retries", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", errors.New("persistent error")
		}

		_, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistent error")
		assert.Equal(t, 4, attempts)
	})

	t.Run("does not retry a missing page", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, url string) (string, error) {
			attempts++
			return "", &prodmeta.StatusError{StatusCode: 404, URL: url}
		}

		_, err := render.FetchWithRetry(context.Background(), "https://shop.example.com/gone", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Equal(t, "HTTP 404 for https://shop.example.com/gone", err.Error())
		assert.Equal(t, 1, attempts)
	})

	t.Run("does not retry invalid input", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", prodmeta.Errorf(prodmeta.EINVALID, "fetcher closed")
		}

		_, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Equal(t, prodmeta.EINVALID, prodmeta.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries rate limiting and server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, url string) (string, error) {
			attempts++
			switch attempts {
			case 1:
				return "", &prodmeta.StatusError{StatusCode: 429, URL: url}
			case 2:
				return "", &prodmeta.StatusError{StatusCode: 503, URL: url}
			}
			return "<html>ok</html>", nil
		}

		html, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 3, attempts)
	})

	t.Run("empty delays make a single attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			return "", errors.New("fail")
		}

		_, err := render.FetchWithRetry(context.Background(), "https://shop.example.com", fetch, nil, []time.Duration{})

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			cancel()
			return "", errors.New("transient error")
		}

		_, err := render.FetchWithRetry(ctx, "https://shop.example.com", fetch, nil, []time.Duration{time.Hour})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("logs each retry", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(_ context.Context, _ string) (string, error) {
			attempts++
			if attempts < 4 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		var logs []string
		logf := func(format string, _ ...any) {
			logs = append(logs, format)
		}

		_, err := render.FetchWithRetry(context.Background(), "https://shop.example.com/page", fetch, logf, noDelays)

		require.NoError(t, err)
		assert.Len(t, logs, 3)
	})
}

func TestIsPermanent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: &prodmeta.StatusError{StatusCode: 404}, want: true},
		{name: "forbidden", err: &prodmeta.StatusError{StatusCode: 403}, want: true},
		{name: "wrapped gone", err: fmt.Errorf("fetch: %w", &prodmeta.StatusError{StatusCode: 410}), want: true},
		{name: "too many requests", err: &prodmeta.StatusError{StatusCode: 429}, want: false},
		{name: "server error", err: &prodmeta.StatusError{StatusCode: 502}, want: false},
		{name: "invalid input", err: prodmeta.Errorf(prodmeta.EINVALID, "invalid URL"), want: true},
		{name: "not found code", err: prodmeta.Errorf(prodmeta.ENOTFOUND, "missing"), want: false},
		{name: "network error", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, render.IsPermanent(tt.err))
		})
	}
}

func TestRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, render.DefaultRetryDelays())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, render.RetryDelays(2))
	assert.Empty(t, render.RetryDelays(0))
	assert.Empty(t, render.RetryDelays(-1))
}
