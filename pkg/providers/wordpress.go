package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

const (
	wordpressDefaultPerPage  = 100
	wordpressDefaultMaxPages = 10
	wordpressFields          = "id,title,content,excerpt,date,link"
	wordpressTotalPagesKey   = "X-WP-TotalPages"
)

// wordpressFetcher pages through a WordPress REST collection (wp-json/wp/v2/<type>).
type wordpressFetcher struct {
	client HTTPClient
}

// NewWordPressFetcher builds a fetcher for WordPress REST collections.
func NewWordPressFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &wordpressFetcher{client: client}
}

func (f *wordpressFetcher) ID() string {
	return TypeWordPress
}

type wordpressRendered struct {
	Rendered string `json:"rendered"`
}

type wordpressItem struct {
	ID      int64             `json:"id"`
	Title   wordpressRendered `json:"title"`
	Content wordpressRendered `json:"content"`
	Date    string            `json:"date"`
	Link    string            `json:"link"`
}

// Fetch returns listings with native (unprefixed) numeric ids.
func (f *wordpressFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Listing, error) {
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("wordpress provider %q source_url is empty", cfg.ID)
	}

	perPage := ConfigInt(cfg, ConfigPerPageKey, wordpressDefaultPerPage)
	maxPages := ConfigInt(cfg, ConfigMaxPagesKey, wordpressDefaultMaxPages)

	var listings []domain.Listing
	for page := 1; page <= maxPages; page++ {
		items, totalPages, done, err := f.fetchPage(ctx, cfg, page, perPage)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}

		for _, item := range items {
			listings = append(listings, domain.Listing{
				ID:      strconv.FormatInt(item.ID, 10),
				Title:   stripHTML(item.Title.Rendered),
				Content: stripHTML(item.Content.Rendered),
				Date:    isoDate(item.Date),
				Link:    item.Link,
				Source:  cfg.Name,
			})
		}

		if page >= totalPages {
			break
		}
	}

	return listings, nil
}

// fetchPage reports done when the collection is exhausted (empty page or 400/404).
func (f *wordpressFetcher) fetchPage(ctx context.Context, cfg Provider, page, perPage int) ([]wordpressItem, int, bool, error) {
	resp, err := f.client.Get(ctx, requestFor(cfg, map[string]string{
		"per_page": strconv.Itoa(perPage),
		"page":     strconv.Itoa(page),
		"_fields":  wordpressFields,
		"orderby":  "date",
		"order":    "desc",
	}, nil))
	if err != nil {
		return nil, 0, false, fmt.Errorf("fetch %s page %d: %w", cfg.ID, page, err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return nil, 0, true, nil
	case status < 200 || status > 299:
		return nil, 0, false, fmt.Errorf("%s page %d returned status %d body: %s", cfg.ID, page, status, responseSnippet(resp.Body()))
	}

	var items []wordpressItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, 0, false, fmt.Errorf("decode %s page %d: %w", cfg.ID, page, err)
	}
	if len(items) == 0 {
		return nil, 0, true, nil
	}

	totalPages := 1
	if raw := strings.TrimSpace(resp.Header().Get(wordpressTotalPagesKey)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, 0, false, fmt.Errorf("%s page %d: invalid %s header %q", cfg.ID, page, wordpressTotalPagesKey, raw)
		}
		totalPages = n
	}

	return items, totalPages, false, nil
}
