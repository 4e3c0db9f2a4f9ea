package scrape_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/prodmeta/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewHostLimiter(100 * time.Millisecond)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "https://shop.example/products/a"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewHostLimiter(100 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background(), "https://shop.example/products/a"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "https://shop.example/products/b"))

		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("different hosts are independent", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewHostLimiter(time.Second)
		require.NoError(t, limiter.Wait(context.Background(), "https://shop.example/products/a"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "https://other.example/products/a"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewHostLimiter(time.Second)
		require.NoError(t, limiter.Wait(context.Background(), "https://shop.example/a"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "https://shop.example/b")

		require.Error(t, err)
	})
}
