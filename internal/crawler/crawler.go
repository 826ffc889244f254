package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/internal/logger"
	"github.com/upgraded-notifs/notifs/pkg/providers"
)

// Service coordinates fetching and classification across sources.
type Service struct {
	registry   providers.FetcherRegistry
	classifier ListingClassifier
	log        logger.Logger
}

// NewService wires a crawler with the fetcher registry and classifier.
func NewService(reg providers.FetcherRegistry, cls ListingClassifier, log logger.Logger) *Service {
	return &Service{
		registry:   reg,
		classifier: cls,
		log:        logger.Ensure(log),
	}
}

// Report summarizes one source pass.
type Report struct {
	SourceID string
	Skipped  bool
	Fetched  int
	New      int
	Matched  int
	Failed   int
	Err      error
}

// Run processes every source in order, recording classified listings in seen.
// Fetch failures are logged and do not stop the pass; only context cancellation
// ends it early, in which case the matches collected so far are returned with the error.
func (s *Service) Run(ctx context.Context, cfgs []providers.Provider, seen domain.SeenSet, roles []string) ([]domain.Listing, []Report, error) {
	if s == nil || s.registry == nil || s.classifier == nil {
		return nil, nil, fmt.Errorf("crawler service is not initialized")
	}
	if seen == nil {
		return nil, nil, errors.New("seen set must not be nil")
	}

	var matches []domain.Listing
	reports := make([]Report, 0, len(cfgs))
	for _, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return matches, reports, err
		}
		found, rep := s.Process(ctx, cfg, seen, roles)
		matches = append(matches, found...)
		reports = append(reports, rep)
		if err := ctx.Err(); err != nil {
			return matches, reports, err
		}
	}
	return matches, reports, nil
}

// Process handles a single source: credential check, fetch, dedupe and classify.
func (s *Service) Process(ctx context.Context, cfg providers.Provider, seen domain.SeenSet, roles []string) ([]domain.Listing, Report) {
	rep := Report{SourceID: cfg.ID}

	fetcher, err := s.registry.FetcherFor(cfg)
	if err != nil {
		rep.Err = fmt.Errorf("resolve fetcher for source %s: %w", cfg.ID, err)
		s.logFailure(cfg, rep.Err)
		return nil, rep
	}

	if checker, ok := fetcher.(providers.CredentialChecker); ok {
		if missing := checker.MissingCredential(cfg); missing != "" {
			rep.Skipped = true
			rep.Err = fmt.Errorf("%w: %s", providers.ErrMissingCredential, missing)
			s.log.WarnObj(fmt.Sprintf("%s not set, skipping %s", missing, cfg.Name), "source_skipped", map[string]any{
				"source_id":  cfg.ID,
				"credential": missing,
			})
			return nil, rep
		}
	}

	listings, err := fetcher.Fetch(ctx, cfg)
	if err != nil {
		rep.Err = fmt.Errorf("fetch source %s: %w", cfg.ID, err)
		s.logFailure(cfg, rep.Err)
		return nil, rep
	}
	rep.Fetched = len(listings)

	fresh := filterUnseen(cfg.ID, listings, seen)
	rep.New = len(fresh)
	s.log.InfoObj("source fetched", "source_fetch", map[string]any{
		"source_id": cfg.ID,
		"fetched":   rep.Fetched,
		"new":       rep.New,
	})

	var matches []domain.Listing
	for _, l := range fresh {
		if ctx.Err() != nil {
			break
		}
		matched, err := s.classifier.Analyze(ctx, l, roles)
		if err != nil {
			// listing stays unseen so the next run retries it
			rep.Failed++
			s.log.ErrorObj("classification failed", "classifier_error", map[string]any{
				"source_id":  cfg.ID,
				"listing_id": l.ID,
				"error":      err.Error(),
			})
			continue
		}
		seen.Add(l.ID)
		l.MatchedRoles = matched
		if !l.Matched() {
			continue
		}
		matches = append(matches, l)
		s.log.InfoObj("listing matched", "listing_match", map[string]any{
			"source_id":  cfg.ID,
			"listing_id": l.ID,
			"title":      l.Title,
			"roles":      matched,
		})
	}
	rep.Matched = len(matches)

	s.log.InfoObj("source processed", "source_result", map[string]any{
		"source_id": cfg.ID,
		"new":       rep.New,
		"matched":   rep.Matched,
		"failed":    rep.Failed,
	})
	return matches, rep
}

// filterUnseen qualifies ids and drops listings already in seen or repeated within the batch.
func filterUnseen(sourceID string, listings []domain.Listing, seen domain.SeenSet) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	batch := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		l.ID = domain.QualifyID(sourceID, l.ID)
		if l.ID == "" || seen.Has(l.ID) {
			continue
		}
		if _, dup := batch[l.ID]; dup {
			continue
		}
		batch[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

func (s *Service) logFailure(cfg providers.Provider, err error) {
	s.log.ErrorObj("source failed", "source_error", map[string]any{
		"source_id": cfg.ID,
		"error":     err.Error(),
	})
}
