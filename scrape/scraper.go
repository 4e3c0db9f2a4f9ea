// Package scrape provides product extraction orchestration.
// It coordinates page rendering, language model extraction and result
// normalization for single URLs and for batches of URLs.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/prodmeta"
	"github.com/fwojciec/prodmeta/jsonschema"
)

var _ prodmeta.ProductExtractor = (*Scraper)(nil)

// Scraper extracts one product record from one URL.
// It holds no mutable state and is safe for concurrent use.
type Scraper struct {
	Renderer  prodmeta.Renderer
	Extractor prodmeta.Extractor

	// Schema is the structured output contract sent to the model.
	// Defaults to the reflected prodmeta.Product schema.
	Schema json.RawMessage

	// Instruction is the extraction prompt. Defaults to prodmeta.Instruction.
	Instruction string

	Logger *slog.Logger
}

// ExtractOne renders url, asks the model for a product record and normalizes
// the answer. Every failure is returned as a failed Outcome, including panics
// in the renderer or extractor; ExtractOne does not retry.
func (s *Scraper) ExtractOne(ctx context.Context, url string, cfg prodmeta.ProviderConfig) (o *prodmeta.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = prodmeta.Failed(url, prodmeta.EUNEXPECTED, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	page, err := s.Renderer.Render(ctx, url)
	if err != nil {
		return prodmeta.Failed(url, prodmeta.ERENDER, prodmeta.ErrorMessage(err))
	}
	if page == nil {
		return prodmeta.Failed(url, prodmeta.ERENDER, "renderer returned no page")
	}

	raw, err := s.Extractor.Extract(ctx, cfg, &prodmeta.ExtractRequest{
		URL:         url,
		Content:     page.Text(),
		Schema:      s.schema(),
		Instruction: s.instruction(),
	})
	if err != nil {
		return prodmeta.Failed(url, prodmeta.EEXTRACT, prodmeta.ErrorMessage(err))
	}

	obj, discarded, err := Normalize(raw)
	if err != nil {
		return prodmeta.Failed(url, prodmeta.ErrorCode(err), prodmeta.ErrorMessage(err))
	}
	if discarded > 0 {
		s.logger().Warn("multiple products extracted, using first", "url", url, "discarded", discarded)
	}

	return prodmeta.Succeeded(url, prodmeta.ProductFromMap(obj))
}

func (s *Scraper) schema() json.RawMessage {
	if s.Schema != nil {
		return s.Schema
	}
	return jsonschema.MustProductSchema()
}

func (s *Scraper) instruction() string {
	if s.Instruction != "" {
		return s.Instruction
	}
	return prodmeta.Instruction
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Normalize parses the model's raw answer and reduces it to a single object.
// A non-empty array yields its first element and the number of elements
// dropped. Errors carry EPARSE or ESHAPE.
func Normalize(raw string) (map[string]any, int, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, 0, prodmeta.Errorf(prodmeta.EPARSE, "invalid JSON from extractor")
	}

	switch v := v.(type) {
	case map[string]any:
		return v, 0, nil
	case []any:
		if len(v) == 0 {
			return nil, 0, prodmeta.Errorf(prodmeta.ESHAPE, "no products found in extracted data")
		}
		obj, ok := v[0].(map[string]any)
		if !ok {
			return nil, 0, prodmeta.Errorf(prodmeta.ESHAPE, "unexpected extracted data shape: array of %s", kind(v[0]))
		}
		return obj, len(v) - 1, nil
	default:
		return nil, 0, prodmeta.Errorf(prodmeta.ESHAPE, "unexpected extracted data shape: %s", kind(v))
	}
}

// kind names the JSON type of a decoded value.
func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
