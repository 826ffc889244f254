package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/pkg/providers"
)

// fakeFetcher returns preset listings or an error.
type fakeFetcher struct {
	id       string
	listings []domain.Listing
	err      error
	calls    int
}

func (f *fakeFetcher) ID() string { return f.id }
func (f *fakeFetcher) Fetch(_ context.Context, _ providers.Provider) ([]domain.Listing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

// credentialFetcher reports a missing credential.
type credentialFetcher struct {
	fakeFetcher
	missing string
}

func (f *credentialFetcher) MissingCredential(providers.Provider) string { return f.missing }

// fakeRegistry maps provider id to a fetcher.
type fakeRegistry map[string]providers.Fetcher

func (f fakeRegistry) FetcherFor(cfg providers.Provider) (providers.Fetcher, error) {
	fetcher, ok := f[cfg.ID]
	if !ok {
		return nil, errors.New("missing fetcher")
	}
	return fetcher, nil
}

// fakeClassifier answers from a title lookup table and can fail per listing id.
type fakeClassifier struct {
	byTitle map[string][]string
	failIDs map[string]bool
	calls   []string
	cancel  context.CancelFunc
}

func (f *fakeClassifier) Analyze(_ context.Context, l domain.Listing, _ []string) ([]string, error) {
	f.calls = append(f.calls, l.ID)
	if f.cancel != nil {
		f.cancel()
	}
	if f.failIDs[l.ID] {
		return nil, errors.New("api unavailable")
	}
	return f.byTitle[l.Title], nil
}

var roles = []string{"AI", "Data"}

func wpSource() providers.Provider {
	return providers.Provider{ID: "upgraded", Name: "upgraded.se", Type: providers.TypeWordPress}
}

func TestProcessQualifiesFiltersAndClassifies(t *testing.T) {
	fetcher := &fakeFetcher{id: "wp", listings: []domain.Listing{
		{ID: "1", Title: "ML engineer"},
		{ID: "2", Title: "Java dev"},
		{ID: "3", Title: "Old"},
		{ID: "2", Title: "Java dev"},
	}}
	cls := &fakeClassifier{byTitle: map[string][]string{"ML engineer": {"AI"}}}
	svc := NewService(fakeRegistry{"upgraded": fetcher}, cls, nil)
	seen := domain.NewSeenSet("upgraded:3")

	matches, rep := svc.Process(context.Background(), wpSource(), seen, roles)
	if rep.Err != nil {
		t.Fatalf("unexpected error: %v", rep.Err)
	}
	if rep.Fetched != 4 || rep.New != 2 || rep.Matched != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if len(matches) != 1 || matches[0].ID != "upgraded:1" || matches[0].MatchedRoles[0] != "AI" {
		t.Fatalf("unexpected matches %#v", matches)
	}
	for _, id := range []string{"upgraded:1", "upgraded:2", "upgraded:3"} {
		if !seen.Has(id) {
			t.Errorf("expected %s in seen set", id)
		}
	}
	if len(cls.calls) != 2 {
		t.Fatalf("expected 2 classifier calls, got %v", cls.calls)
	}
}

func TestProcessKeepsPrefixedIDs(t *testing.T) {
	fetcher := &fakeFetcher{id: "sb", listings: []domain.Listing{{ID: "offentlig:abc", Title: "t"}}}
	svc := NewService(fakeRegistry{"offentlig": fetcher}, &fakeClassifier{}, nil)
	seen := domain.NewSeenSet()

	svc.Process(context.Background(), providers.Provider{ID: "offentlig"}, seen, roles)
	if !seen.Has("offentlig:abc") || seen.Len() != 1 {
		t.Fatalf("unexpected seen set %v", seen.Sorted())
	}
}

func TestProcessSkipsMissingCredential(t *testing.T) {
	fetcher := &credentialFetcher{fakeFetcher: fakeFetcher{id: "sb"}, missing: "OFFENTLIG_API_KEY"}
	svc := NewService(fakeRegistry{"offentlig": fetcher}, &fakeClassifier{}, nil)

	matches, rep := svc.Process(context.Background(), providers.Provider{ID: "offentlig", Name: "offentlig.ai"}, domain.NewSeenSet(), roles)
	if !rep.Skipped || !errors.Is(rep.Err, providers.ErrMissingCredential) {
		t.Fatalf("expected skipped report, got %+v", rep)
	}
	if len(matches) != 0 || fetcher.calls != 0 {
		t.Fatalf("expected no fetch, got %d calls", fetcher.calls)
	}
}

func TestProcessLeavesFailedClassificationUnseen(t *testing.T) {
	fetcher := &fakeFetcher{id: "wp", listings: []domain.Listing{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}}
	cls := &fakeClassifier{failIDs: map[string]bool{"upgraded:1": true}}
	svc := NewService(fakeRegistry{"upgraded": fetcher}, cls, nil)
	seen := domain.NewSeenSet()

	_, rep := svc.Process(context.Background(), wpSource(), seen, roles)
	if rep.Failed != 1 {
		t.Fatalf("expected 1 failure, got %+v", rep)
	}
	if seen.Has("upgraded:1") || !seen.Has("upgraded:2") {
		t.Fatalf("unexpected seen set %v", seen.Sorted())
	}
}

func TestRunContinuesAfterFetchFailure(t *testing.T) {
	reg := fakeRegistry{
		"upgraded":  &fakeFetcher{id: "wp", err: errors.New("503")},
		"offentlig": &fakeFetcher{id: "sb", listings: []domain.Listing{{ID: "offentlig:h", Title: "AI tender"}}},
	}
	cls := &fakeClassifier{byTitle: map[string][]string{"AI tender": {"AI"}}}
	svc := NewService(reg, cls, nil)

	matches, reports, err := svc.Run(context.Background(), []providers.Provider{wpSource(), {ID: "offentlig"}}, domain.NewSeenSet(), roles)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 2 || reports[0].Err == nil || reports[1].Err != nil {
		t.Fatalf("unexpected reports %+v", reports)
	}
	if len(matches) != 1 || matches[0].ID != "offentlig:h" {
		t.Fatalf("unexpected matches %#v", matches)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{id: "wp", listings: []domain.Listing{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}}
	cls := &fakeClassifier{cancel: cancel}
	svc := NewService(fakeRegistry{"upgraded": fetcher}, cls, nil)
	seen := domain.NewSeenSet()

	_, _, err := svc.Run(ctx, []providers.Provider{wpSource(), wpSource()}, seen, roles)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(cls.calls) != 1 || fetcher.calls != 1 {
		t.Fatalf("expected processing to stop after first classification, calls %v fetches %d", cls.calls, fetcher.calls)
	}
	if !seen.Has("upgraded:1") {
		t.Fatal("expected classified listing recorded")
	}
}

func TestRunRequiresSeenSet(t *testing.T) {
	svc := NewService(fakeRegistry{}, &fakeClassifier{}, nil)
	if _, _, err := svc.Run(context.Background(), nil, nil, roles); err == nil {
		t.Fatal("expected error for nil seen set")
	}
}
