package providers

import (
	"html"
	"regexp"
	"strings"

	"github.com/upgraded-notifs/notifs/pkg/httpclient"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripHTML replaces tags with spaces, decodes entities and trims the result.
func stripHTML(raw string) string {
	text := tagPattern.ReplaceAllString(raw, " ")
	return strings.TrimSpace(html.UnescapeString(text))
}

// isoDate keeps the date part of an ISO timestamp.
func isoDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

func requestFor(cfg Provider, query, extra map[string]string) httpclient.Request {
	headers := Headers(cfg)
	for k, v := range extra {
		headers[k] = v
	}
	return httpclient.Request{URL: cfg.SourceURL, Query: query, Headers: headers}
}
