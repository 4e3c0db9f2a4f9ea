// Package gemini implements product extraction and token counting with
// Google's Gemini models through google.golang.org/genai.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/prodmeta"
	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/genai"
)

// DefaultCacheSize is the number of clients kept for distinct provider configs.
const DefaultCacheSize = 8

// MaxOutputTokens caps the model response.
const MaxOutputTokens = 2000

var _ prodmeta.Extractor = (*Extractor)(nil)

// Extractor implements prodmeta.Extractor using Gemini structured output.
// Clients are created lazily per provider config and reused.
// Extractor is safe for concurrent use.
type Extractor struct {
	httpClient *http.Client
	cacheSize  int

	mu      sync.Mutex
	clients *lru.Cache[uint64, *genai.Client]
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the HTTP client used by genai clients.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = c
	}
}

// WithCacheSize sets how many provider clients are kept.
func WithCacheSize(n int) Option {
	return func(e *Extractor) {
		e.cacheSize = n
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(e)
	}

	clients, err := lru.New[uint64, *genai.Client](e.cacheSize)
	if err != nil {
		return nil, prodmeta.Errorf(prodmeta.EINVALID, "client cache: %v", err)
	}
	e.clients = clients

	return e, nil
}

// Extract sends the page content to the model and returns its raw JSON answer.
func (e *Extractor) Extract(ctx context.Context, cfg prodmeta.ProviderConfig, req *prodmeta.ExtractRequest) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if req == nil || strings.TrimSpace(req.Content) == "" {
		return "", prodmeta.Errorf(prodmeta.EINVALID, "page content required")
	}

	backend, model, err := ParseProvider(cfg.Provider)
	if err != nil {
		return "", err
	}

	client, err := e.client(ctx, backend, cfg)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(BuildUserPrompt(req), genai.RoleUser)},
		BuildConfig(req),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", prodmeta.Errorf(prodmeta.EINTERNAL, "gemini returned nil result")
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", fb.BlockReason)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return text, nil
}

func (e *Extractor) client(ctx context.Context, backend genai.Backend, cfg prodmeta.ProviderConfig) (*genai.Client, error) {
	key := cacheKey(backend, cfg)

	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.clients.Get(key); ok {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIToken,
		Backend:    backend,
		HTTPClient: e.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	e.clients.Add(key, c)
	return c, nil
}

// cacheKey hashes the fields that determine a client's identity.
func cacheKey(backend genai.Backend, cfg prodmeta.ProviderConfig) uint64 {
	d := xxhash.New()
	_, _ = fmt.Fprintf(d, "%d\x00%s\x00%s", backend, cfg.APIToken, cfg.BaseURL)
	return d.Sum64()
}

// BuildConfig returns the GenerateContentConfig for an extraction call.
// The response is constrained to JSON matching req.Schema.
func BuildConfig(req *prodmeta.ExtractRequest) *genai.GenerateContentConfig {
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  MaxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	if req.Instruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instruction}},
		}
	}
	if len(req.Schema) > 0 {
		config.ResponseJsonSchema = json.RawMessage(req.Schema)
	}
	return config
}

// BuildUserPrompt builds the user prompt containing the page.
func BuildUserPrompt(req *prodmeta.ExtractRequest) string {
	var sb strings.Builder
	sb.WriteString("<page>\n")
	if req.URL != "" {
		fmt.Fprintf(&sb, "<url>%s</url>\n", req.URL)
	}
	fmt.Fprintf(&sb, "<content>\n%s\n</content>\n", req.Content)
	sb.WriteString("</page>")
	return sb.String()
}
