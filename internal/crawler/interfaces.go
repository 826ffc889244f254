package crawler

import (
	"context"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// ListingClassifier returns the subset of roles a listing matches.
type ListingClassifier interface {
	Analyze(ctx context.Context, listing domain.Listing, roles []string) ([]string, error)
}
