package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/upgraded-notifs/notifs/pkg/httpclient"
)

func wordpressProvider(url string) Provider {
	return Provider{ID: UpgradedID, Name: "upgraded.se", Type: TypeWordPress, SourceURL: url}
}

func TestWordPressFetcherPaginatesUntilTotalPages(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("per_page") != "100" || q.Get("_fields") != wordpressFields || q.Get("orderby") != "date" || q.Get("order") != "desc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		page, _ := strconv.Atoi(q.Get("page"))
		pages = append(pages, page)
		w.Header().Set("X-WP-TotalPages", "2")
		w.Write([]byte(`[{"id": ` + strconv.Itoa(page) + `,
			"title": {"rendered": "<b>ML</b> &amp; Platform"},
			"content": {"rendered": "<p>Build &amp; ship</p>"},
			"date": "2025-01-0` + strconv.Itoa(page) + `T08:30:00",
			"link": "https://upgraded.se/uppdrag/` + strconv.Itoa(page) + `"}]`))
	}))
	defer srv.Close()

	fetcher := NewWordPressFetcher(httpclient.NewRestyClient(DefaultHTTPTimeout))
	listings, err := fetcher.Fetch(context.Background(), wordpressProvider(srv.URL))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 page requests, got %v", pages)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	first := listings[0]
	if first.ID != "1" {
		t.Errorf("expected native id 1, got %q", first.ID)
	}
	if first.Title != "ML  & Platform" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Content != "Build & ship" {
		t.Errorf("unexpected content %q", first.Content)
	}
	if first.Date != "2025-01-01" {
		t.Errorf("unexpected date %q", first.Date)
	}
	if first.Source != "upgraded.se" {
		t.Errorf("unexpected source %q", first.Source)
	}
}

func TestWordPressFetcherStopsOnBadRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, `{"code":"rest_post_invalid_page_number"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("X-WP-TotalPages", "5")
		w.Write([]byte(`[{"id": 9, "title": {"rendered": "T"}, "content": {"rendered": "C"}, "date": "2025-02-01T00:00:00", "link": "l"}]`))
	}))
	defer srv.Close()

	listings, err := NewWordPressFetcher(nil).Fetch(context.Background(), wordpressProvider(srv.URL))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls != 2 || len(listings) != 1 {
		t.Fatalf("expected 2 calls and 1 listing, got calls=%d listings=%d", calls, len(listings))
	}
}

func TestWordPressFetcherStopsOnEmptyPageAndMaxPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("X-WP-TotalPages", "50")
		w.Write([]byte(`[{"id": 1, "title": {"rendered": "T"}, "content": {"rendered": ""}, "date": "2025-02-01", "link": "l"}]`))
	}))
	defer srv.Close()

	cfg := wordpressProvider(srv.URL)
	cfg.Config = map[string]any{ConfigMaxPagesKey: 3}
	if _, err := NewWordPressFetcher(nil).Fetch(context.Background(), cfg); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected max_pages to cap requests at 3, got %d", calls)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer empty.Close()

	listings, err := NewWordPressFetcher(nil).Fetch(context.Background(), wordpressProvider(empty.URL))
	if err != nil {
		t.Fatalf("Fetch empty: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestWordPressFetcherErrorsOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewWordPressFetcher(nil).Fetch(context.Background(), wordpressProvider(srv.URL)); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`  <div class="x">Senior <em>Go</em> dev &lt;remote&gt;</div> `)
	if got != "Senior  Go  dev <remote>" {
		t.Fatalf("unexpected stripped text %q", got)
	}
}
