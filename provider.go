package prodmeta

import "log/slog"

// DefaultProvider is the model provider used when none is configured.
const DefaultProvider = "gemini/gemini-2.5-flash"

// ProviderConfig identifies the language model provider used for extraction.
// It is read-only once constructed and is passed by value into every call.
type ProviderConfig struct {
	// Provider is "<backend>/<model>", e.g. "gemini/gemini-2.5-flash".
	Provider string

	// APIToken is the credential sent to the provider.
	APIToken string

	// BaseURL overrides the provider API endpoint. Empty means the default.
	BaseURL string
}

// Validate returns an error if the config is missing required fields.
func (c ProviderConfig) Validate() error {
	if c.Provider == "" {
		return Errorf(EINVALID, "provider required")
	}
	if c.APIToken == "" {
		return Errorf(EINVALID, "api token required")
	}
	return nil
}

// LogValue implements slog.LogValuer and never reveals the token.
func (c ProviderConfig) LogValue() slog.Value {
	token := ""
	if c.APIToken != "" {
		token = "[redacted]"
	}
	return slog.GroupValue(
		slog.String("provider", c.Provider),
		slog.String("base_url", c.BaseURL),
		slog.String("api_token", token),
	)
}
