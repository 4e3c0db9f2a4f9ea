package fs_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/prodmeta"
	"github.com/fwojciec/prodmeta/fs"
	"github.com/fwojciec/prodmeta/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "product path", url: "https://shop.example/products/mug", want: "shop.example/products/mug.md"},
		{name: "trailing slash becomes index", url: "https://shop.example/collections/", want: "shop.example/collections/index.md"},
		{name: "root path becomes index", url: "https://shop.example/", want: "shop.example/index.md"},
		{name: "root without trailing slash", url: "https://shop.example", want: "shop.example/index.md"},
		{name: "ignores query string", url: "https://shop.example/products/mug?variant=42", want: "shop.example/products/mug.md"},
		{name: "ignores fragment", url: "https://shop.example/products/mug#reviews", want: "shop.example/products/mug.md"},
		{name: "drops port", url: "http://localhost:8080/p/1", want: "localhost/p/1.md"},
		{name: "missing host", url: "/products/mug", wantErr: true},
		{name: "path traversal", url: "https://shop.example/../../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, prodmeta.EINVALID, prodmeta.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestFormatPage(t *testing.T) {
	t.Parallel()

	page := &prodmeta.Page{
		URL:      "https://shop.example/products/mug",
		Title:    "Stoneware Mug",
		Markdown: "# Stoneware Mug\n\nHand glazed.",
		Images:   []string{"https://cdn.example/mug-1.jpg", "https://cdn.example/mug-2.jpg"},
	}

	got := fs.FormatPage(page, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	want := `---
source: https://shop.example/products/mug
title: Stoneware Mug
rendered: 2025-03-14
images:
  - https://cdn.example/mug-1.jpg
  - https://cdn.example/mug-2.jpg
---

# Stoneware Mug

Hand glazed.`
	assert.Equal(t, want, got)
}

func TestFileStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewFileStore(base, "pages")

	err := store.Save(context.Background(), &prodmeta.Page{
		URL:      "https://shop.example/products/mug",
		Title:    "Mug",
		Markdown: "Hand glazed.",
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "pages.tmp", "shop.example", "products", "mug.md"))
	require.NoError(t, err, "file should exist in temp directory")

	_, err = os.Stat(filepath.Join(base, "pages"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestFileStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewFileStore(base, "pages")
	require.NoError(t, store.Save(context.Background(), &prodmeta.Page{
		URL:      "https://shop.example/products/mug",
		Title:    "Mug",
		Markdown: "Hand glazed.",
	}))

	require.NoError(t, store.Commit())

	content, err := os.ReadFile(filepath.Join(base, "pages", "shop.example", "products", "mug.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "source: https://shop.example/products/mug")
	assert.Contains(t, string(content), "Hand glazed.")

	_, err = os.Stat(filepath.Join(base, "pages.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestFileStore_CommitReplacesPreviousArchive(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	first := fs.NewFileStore(base, "pages")
	require.NoError(t, first.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/old"}))
	require.NoError(t, first.Commit())

	second := fs.NewFileStore(base, "pages")
	require.NoError(t, second.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/new"}))
	require.NoError(t, second.Commit())

	_, err := os.Stat(filepath.Join(base, "pages", "shop.example", "products", "new.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "pages", "shop.example", "products", "old.md"))
	assert.True(t, os.IsNotExist(err), "previous archive should be replaced")
}

func TestFileStore_AbortCleansUpTempDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewFileStore(base, "pages")
	require.NoError(t, store.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/mug"}))

	require.NoError(t, store.Abort())

	_, err := os.Stat(filepath.Join(base, "pages.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after abort")
	_, err = os.Stat(filepath.Join(base, "pages"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist after abort")
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	store := fs.NewFileStore(t.TempDir(), "pages")

	err := store.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/../../../etc/passwd"})

	require.Error(t, err)
	assert.Contains(t, prodmeta.ErrorMessage(err), "path traversal")
}

func TestArchivingRenderer_Render(t *testing.T) {
	t.Parallel()

	page := &prodmeta.Page{URL: "https://shop.example/products/mug", Title: "Mug"}

	t.Run("saves rendered page", func(t *testing.T) {
		t.Parallel()

		var saved *prodmeta.Page
		store := &mock.PageStore{
			SaveFn: func(ctx context.Context, p *prodmeta.Page) error {
				saved = p
				return nil
			},
		}
		inner := &mock.Renderer{
			RenderFn: func(ctx context.Context, url string) (*prodmeta.Page, error) {
				return page, nil
			},
		}

		r := fs.NewArchivingRenderer(inner, store, slog.New(slog.DiscardHandler))
		got, err := r.Render(context.Background(), page.URL)

		require.NoError(t, err)
		assert.Same(t, page, got)
		assert.Same(t, page, saved)
	})

	t.Run("save failure does not fail render", func(t *testing.T) {
		t.Parallel()

		store := &mock.PageStore{
			SaveFn: func(ctx context.Context, p *prodmeta.Page) error {
				return errors.New("disk full")
			},
		}
		inner := &mock.Renderer{
			RenderFn: func(ctx context.Context, url string) (*prodmeta.Page, error) {
				return page, nil
			},
		}

		r := fs.NewArchivingRenderer(inner, store, slog.New(slog.DiscardHandler))
		got, err := r.Render(context.Background(), page.URL)

		require.NoError(t, err)
		assert.Same(t, page, got)
	})

	t.Run("render failure skips save", func(t *testing.T) {
		t.Parallel()

		saveCalled := false
		store := &mock.PageStore{
			SaveFn: func(ctx context.Context, p *prodmeta.Page) error {
				saveCalled = true
				return nil
			},
		}
		inner := &mock.Renderer{
			RenderFn: func(ctx context.Context, url string) (*prodmeta.Page, error) {
				return nil, errors.New("timeout")
			},
		}

		r := fs.NewArchivingRenderer(inner, store, slog.New(slog.DiscardHandler))
		_, err := r.Render(context.Background(), page.URL)

		require.Error(t, err)
		assert.False(t, saveCalled)
	})
}

func TestFileStore_CommitWithoutPagesKeepsPreviousArchive(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	first := fs.NewFileStore(base, "pages")
	require.NoError(t, first.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/mug"}))
	require.NoError(t, first.Commit())

	err := fs.NewFileStore(base, "pages").Commit()

	require.Error(t, err)
	assert.Equal(t, prodmeta.ENOTFOUND, prodmeta.ErrorCode(err))
	_, err = os.Stat(filepath.Join(base, "pages", "shop.example", "products", "mug.md"))
	assert.NoError(t, err)
}

func TestFileStore_DiscardsStagedPagesFromEarlierRun(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	interrupted := fs.NewFileStore(base, "pages")
	require.NoError(t, interrupted.Save(context.Background(), &prodmeta.Page{URL: "https://old.example/a"}))

	next := fs.NewFileStore(base, "pages")
	require.NoError(t, next.Save(context.Background(), &prodmeta.Page{URL: "https://new.example/b"}))
	require.NoError(t, next.Commit())

	_, err := os.Stat(filepath.Join(base, "pages", "new.example", "b.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "pages", "old.example", "a.md"))
	assert.True(t, os.IsNotExist(err), "uncommitted page from an earlier run must not be published")
}

func TestFileStore_KeepsPagesSavedInSameRun(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewFileStore(base, "pages")
	require.NoError(t, store.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/mug"}))
	require.NoError(t, store.Save(context.Background(), &prodmeta.Page{URL: "https://shop.example/products/bowl"}))
	require.NoError(t, store.Commit())

	_, err := os.Stat(filepath.Join(base, "pages", "shop.example", "products", "mug.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "pages", "shop.example", "products", "bowl.md"))
	require.NoError(t, err)
}
