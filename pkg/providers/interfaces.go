package providers

import (
	"context"
	"errors"

	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/pkg/httpclient"
)

// ErrMissingCredential marks a source that cannot run because its secret is not set.
var ErrMissingCredential = errors.New("required credential not set")

// Fetcher is responsible for retrieving and normalizing listings for a provider.
// Concrete implementations live in type-specific files (e.g., wordpress.go).
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider) ([]domain.Listing, error)
}

// CredentialChecker is implemented by fetchers that need a secret before they can run.
// MissingCredential returns the name of the absent credential, or "" when ready.
type CredentialChecker interface {
	MissingCredential(cfg Provider) string
}

// FetcherRegistry resolves the fetcher implementation for a given provider config.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client

// EnvLookup resolves an environment variable; os.Getenv in production.
type EnvLookup func(key string) string
