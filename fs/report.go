package fs

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/prodmeta"
)

// EncodeReport writes the report as indented JSON.
func EncodeReport(w io.Writer, report *prodmeta.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// WriteReport writes the report to path atomically. The JSON is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial report.
func WriteReport(path string, report *prodmeta.Report) (err error) {
	if path == "" {
		return prodmeta.Errorf(prodmeta.EINVALID, "report path required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := EncodeReport(f, report); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
