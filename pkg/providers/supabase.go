package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

const (
	supabaseDefaultPageSize = 200
	supabaseSelect          = "tender_hash,title,text,publication_date,tender_url,source_url,deadline_date"
)

// supabaseFetcher reads the most recent rows of a Supabase (PostgREST) tenders table.
type supabaseFetcher struct {
	client HTTPClient
	lookup EnvLookup
}

// NewSupabaseFetcher builds a fetcher for Supabase REST tables. The api key is resolved per
// provider through lookup using the provider's api_key_env setting.
func NewSupabaseFetcher(client HTTPClient, lookup EnvLookup) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &supabaseFetcher{client: client, lookup: lookup}
}

func (f *supabaseFetcher) ID() string {
	return TypeSupabase
}

// MissingCredential returns the api key variable name when it is unset.
func (f *supabaseFetcher) MissingCredential(cfg Provider) string {
	if f.apiKey(cfg) != "" {
		return ""
	}
	return f.apiKeyEnv(cfg)
}

func (f *supabaseFetcher) apiKeyEnv(cfg Provider) string {
	return ConfigString(cfg, ConfigAPIKeyEnvKey, "OFFENTLIG_API_KEY")
}

func (f *supabaseFetcher) apiKey(cfg Provider) string {
	if f.lookup == nil {
		return ""
	}
	return strings.TrimSpace(f.lookup(f.apiKeyEnv(cfg)))
}

type supabaseTender struct {
	TenderHash      *string `json:"tender_hash"`
	Title           *string `json:"title"`
	Text            *string `json:"text"`
	PublicationDate *string `json:"publication_date"`
	TenderURL       *string `json:"tender_url"`
	SourceURL       *string `json:"source_url"`
}

// Fetch returns listings with ids qualified as "<provider-id>:<tender_hash>".
func (f *supabaseFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Listing, error) {
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("supabase provider %q source_url is empty", cfg.ID)
	}
	key := f.apiKey(cfg)
	if key == "" {
		return nil, fmt.Errorf("%s: %s: %w", cfg.ID, f.apiKeyEnv(cfg), ErrMissingCredential)
	}

	limit := ConfigInt(cfg, ConfigPageSizeKey, supabaseDefaultPageSize)
	resp, err := f.client.Get(ctx, requestFor(cfg, map[string]string{
		"select": supabaseSelect,
		"order":  "created_at.desc",
		"limit":  strconv.Itoa(limit),
	}, map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	}))
	if err != nil {
		return nil, fmt.Errorf("fetch %s tenders: %w", cfg.ID, err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		return nil, fmt.Errorf("%s tenders returned status %d body: %s", cfg.ID, status, responseSnippet(resp.Body()))
	}

	var rows []supabaseTender
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("decode %s tenders: %w", cfg.ID, err)
	}

	dashboard := ConfigString(cfg, ConfigDashboardURLKey, "")
	listings := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		hash, title := deref(row.TenderHash), deref(row.Title)
		if hash == "" || title == "" {
			continue
		}
		listings = append(listings, domain.Listing{
			ID:      cfg.ID + domain.IDDelimiter + hash,
			Title:   title,
			Content: deref(row.Text),
			Date:    isoDate(deref(row.PublicationDate)),
			Link:    firstNonEmpty(deref(row.SourceURL), deref(row.TenderURL), dashboard),
			Source:  cfg.Name,
		})
	}

	return listings, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
