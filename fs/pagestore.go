// Package fs provides file-based storage for extraction results and
// rendered pages.
package fs

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.PageStore = (*FileStore)(nil)

// FileStore implements prodmeta.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
// The first Save discards whatever an earlier, uncommitted run left in the
// temporary directory.
type FileStore struct {
	baseDir string
	name    string

	reset    sync.Once
	resetErr error
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes the page as markdown with frontmatter under the temp directory.
func (s *FileStore) Save(ctx context.Context, page *prodmeta.Page) error {
	s.reset.Do(func() {
		s.resetErr = os.RemoveAll(s.tempDir())
	})
	if s.resetErr != nil {
		return s.resetErr
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(FormatPage(page, time.Now())), 0644)
}

// Commit replaces the final directory with the temp directory. When nothing
// was saved the previous archive is left untouched and ENOTFOUND is returned.
func (s *FileStore) Commit() error {
	if _, err := os.Stat(s.tempDir()); err != nil {
		if os.IsNotExist(err) {
			return prodmeta.Errorf(prodmeta.ENOTFOUND, "no pages saved")
		}
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort removes the temp directory.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a page URL to a relative file path.
// The host becomes the top-level directory so pages from several shops can
// share one archive. Query strings and fragments are ignored.
// Example: https://shop.example/products/mug → shop.example/products/mug.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", prodmeta.Errorf(prodmeta.EINVALID, "URL has no host: %q", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")
	switch {
	case path == "":
		path = "index.md"
	case strings.HasSuffix(path, "/"):
		path += "index.md"
	default:
		path += ".md"
	}

	rel := filepath.Join(u.Hostname(), filepath.FromSlash(path))
	if !filepath.IsLocal(rel) || !strings.HasPrefix(rel, u.Hostname()+string(filepath.Separator)) {
		return "", prodmeta.Errorf(prodmeta.EINVALID, "path traversal in URL %q", rawURL)
	}
	return rel, nil
}

// FormatPage formats a page with YAML frontmatter listing its images.
func FormatPage(page *prodmeta.Page, rendered time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	b.WriteString("\nrendered: ")
	b.WriteString(rendered.Format("2006-01-02"))
	if len(page.Images) > 0 {
		b.WriteString("\nimages:")
		for _, img := range page.Images {
			b.WriteString("\n  - ")
			b.WriteString(img)
		}
	}
	b.WriteString("\n---\n\n")
	b.WriteString(page.Markdown)
	return b.String()
}

var _ prodmeta.Renderer = (*ArchivingRenderer)(nil)

// ArchivingRenderer saves every successfully rendered page to a PageStore.
// Save failures are logged and never fail the render.
type ArchivingRenderer struct {
	next   prodmeta.Renderer
	store  prodmeta.PageStore
	logger *slog.Logger
}

// NewArchivingRenderer creates a new ArchivingRenderer.
func NewArchivingRenderer(next prodmeta.Renderer, store prodmeta.PageStore, logger *slog.Logger) *ArchivingRenderer {
	return &ArchivingRenderer{next: next, store: store, logger: logger}
}

// Render delegates to the wrapped renderer and archives the result.
func (r *ArchivingRenderer) Render(ctx context.Context, url string) (*prodmeta.Page, error) {
	page, err := r.next.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, page); err != nil {
		r.logger.Warn("archive page", "url", url, "err", err)
	}
	return page, nil
}
