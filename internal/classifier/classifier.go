package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/internal/logger"
)

// Generator sends a single prompt to a language model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Classifier tags listings with the subset of configured roles they match.
type Classifier struct {
	gen Generator
	log logger.Logger
}

// New builds a Classifier on top of the given generator.
func New(gen Generator, log logger.Logger) *Classifier {
	return &Classifier{gen: gen, log: logger.Ensure(log)}
}

// Analyze returns the roles the listing matches, in the order the model returned them.
// Unparsable replies yield no roles and a nil error; only transport or API failures
// return an error.
func (c *Classifier) Analyze(ctx context.Context, listing domain.Listing, roles []string) ([]string, error) {
	if c == nil || c.gen == nil {
		return nil, errors.New("classifier is not initialized")
	}
	if len(roles) == 0 {
		return nil, nil
	}

	text, err := c.gen.Generate(ctx, BuildPrompt(listing, roles))
	if err != nil {
		return nil, fmt.Errorf("classify listing %s: %w", listing.ID, err)
	}

	matched, err := ParseRoles(text, roles)
	if err != nil {
		c.log.DebugObj("classifier reply not parsable", "classifier_parse", map[string]any{
			"listing_id": listing.ID,
			"model":      c.gen.Model(),
			"reply":      truncate(text, 200),
			"error":      err.Error(),
		})
		return nil, nil
	}
	return matched, nil
}

// ParseRoles decodes a JSON array reply and keeps only names present in roles.
// Non-string elements are ignored.
func ParseRoles(text string, roles []string) ([]string, error) {
	var raw []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("decode classifier reply: %w", err)
	}

	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		name, ok := v.(string)
		if !ok || !allowed[name] {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
