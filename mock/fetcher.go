package mock

import (
	"context"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of prodmeta.Fetcher.
// A nil CloseFn makes Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// StaticFetcher returns a Fetcher serving pages by URL. Unknown URLs fail
// with ENOTFOUND.
func StaticFetcher(pages map[string]string) *Fetcher {
	return &Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", prodmeta.Errorf(prodmeta.ENOTFOUND, "HTTP 404 for %s", url)
			}
			return html, nil
		},
	}
}
