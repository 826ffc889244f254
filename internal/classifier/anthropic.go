package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/upgraded-notifs/notifs/pkg/httpclient"
)

const (
	DefaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"
	anthropicVersion      = "2023-06-01"
)

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client    httpclient.Client
	url       string
	apiKey    string
	model     string
	maxTokens int
}

// AnthropicOptions configures an AnthropicGenerator. Zero values fall back to defaults.
type AnthropicOptions struct {
	APIKey    string
	URL       string
	Model     string
	MaxTokens int
	Client    httpclient.Client
}

// NewAnthropicGenerator validates opts and builds the generator. The model call has no timeout.
func NewAnthropicGenerator(opts AnthropicOptions) (*AnthropicGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required (set ANTHROPIC_API_KEY)")
	}

	g := &AnthropicGenerator{
		client:    opts.Client,
		url:       strings.TrimSpace(opts.URL),
		apiKey:    apiKey,
		model:     strings.TrimSpace(opts.Model),
		maxTokens: opts.MaxTokens,
	}
	if g.client == nil {
		g.client = httpclient.NewRestyClient(0)
	}
	if g.url == "" {
		g.url = DefaultAnthropicURL
	}
	if g.model == "" {
		g.model = DefaultAnthropicModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	return g, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends prompt as a single user message and returns the first content block's text.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Post(ctx, httpclient.Request{
		URL: g.url,
		Headers: map[string]string{
			"x-api-key":         g.apiKey,
			"anthropic-version": anthropicVersion,
		},
		Body: anthropicRequest{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		return "", fmt.Errorf("anthropic response status %d: %s", status, truncate(string(resp.Body()), 512))
	}

	var out anthropicResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errors.New("anthropic response has no content blocks")
	}
	return out.Content[0].Text, nil
}

// Model returns the configured model identifier.
func (g *AnthropicGenerator) Model() string { return g.model }
