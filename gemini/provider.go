package gemini

import (
	"strings"

	"github.com/fwojciec/prodmeta"
	"google.golang.org/genai"
)

// DefaultModel is used when the provider string names only a backend.
const DefaultModel = "gemini-2.5-flash"

// ParseProvider splits a provider string into a genai backend and a model.
// "gemini/<model>" and a bare model name select the Gemini API,
// "vertex/<model>" selects Vertex AI.
func ParseProvider(provider string) (genai.Backend, string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return genai.BackendUnspecified, "", prodmeta.Errorf(prodmeta.EINVALID, "provider required")
	}

	prefix, model, found := strings.Cut(provider, "/")
	if !found {
		return genai.BackendGeminiAPI, provider, nil
	}
	if model == "" {
		model = DefaultModel
	}

	switch strings.ToLower(prefix) {
	case "gemini", "google":
		return genai.BackendGeminiAPI, model, nil
	case "vertex", "vertex_ai":
		return genai.BackendVertexAI, model, nil
	default:
		return genai.BackendUnspecified, "", prodmeta.Errorf(prodmeta.EINVALID, "unsupported provider %q", prefix)
	}
}
