package classifier

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	defaultMaxTokens = 256
)

// Settings selects and configures the model backend.
type Settings struct {
	Provider        string
	Model           string
	MaxTokens       int
	AnthropicAPIKey string
	AnthropicURL    string
	GeminiAPIKey    string
}

// NewGenerator builds the generator named by s.Provider (anthropic when empty).
func NewGenerator(ctx context.Context, s Settings) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropicGenerator(AnthropicOptions{
			APIKey:    s.AnthropicAPIKey,
			URL:       s.AnthropicURL,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
		})
	case ProviderGemini:
		return NewGeminiGenerator(ctx, s.GeminiAPIKey, s.Model, s.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported classifier provider %q", s.Provider)
	}
}
