package fs_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prodmeta"
	"github.com/fwojciec/prodmeta/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *prodmeta.Report {
	r := prodmeta.NewReport(2)
	p := prodmeta.NewProduct()
	p.Product = "Skinny Fit Jeans"
	p.Brand = "WROGN"
	p.Price = "Rs. 1299"
	r.Add(prodmeta.Succeeded("https://good.example/p1", p))
	r.Add(prodmeta.Failed("https://bad.example/p2", prodmeta.ERENDER, "timeout"))
	r.Summary.SuccessRate = 50
	r.Summary.TotalProcessingTime = 1.25
	return r
}

func TestEncodeReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, fs.EncodeReport(&buf, testReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.InDelta(t, 2, got["total_urls"], 0)
	assert.InDelta(t, 1, got["successful_extractions"], 0)
	assert.InDelta(t, 1, got["failed_extractions"], 0)

	results, ok := got["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	failed := results[1].(map[string]any)
	assert.Equal(t, false, failed["success"])
	assert.Equal(t, "timeout", failed["error"])
	assert.NotContains(t, failed, "data")
	assert.NotContains(t, failed, "Code")

	assert.Contains(t, buf.String(), "\n  \"total_urls\"")
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	t.Run("writes report and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out", "report.json")

		require.NoError(t, fs.WriteReport(path, testReport()))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		var got prodmeta.Report
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, 2, got.TotalURLs)
		assert.Equal(t, "Skinny Fit Jeans", got.Results[0].Data.Product)

		entries, err := os.ReadDir(filepath.Join(dir, "out"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("overwrites existing report", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

		require.NoError(t, fs.WriteReport(path, prodmeta.NewReport(0)))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"total_urls":0,"successful_extractions":0,"failed_extractions":0,"results":[],"summary":{"success_rate":0,"total_processing_time":0}}`, string(b))
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		err := fs.WriteReport("", testReport())

		require.Error(t, err)
		assert.Equal(t, prodmeta.EINVALID, prodmeta.ErrorCode(err))
	})
}
