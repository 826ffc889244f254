package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// UnknownSource labels matches whose listing carries no source.
const UnknownSource = "unknown"

// Group is the set of matches contributed by one source.
type Group struct {
	Source   string
	Listings []domain.Listing
}

// GroupBySource buckets matches by source in first-appearance order.
func GroupBySource(matches []domain.Listing) []Group {
	var groups []Group
	idx := make(map[string]int)
	for _, m := range matches {
		src := strings.TrimSpace(m.Source)
		if src == "" {
			src = UnknownSource
		}
		i, ok := idx[src]
		if !ok {
			i = len(groups)
			idx[src] = i
			groups = append(groups, Group{Source: src})
		}
		groups[i].Listings = append(groups[i].Listings, m)
	}
	return groups
}

// Subject names every contributing source and the match count.
func Subject(groups []Group) string {
	sources := make([]string, 0, len(groups))
	count := 0
	for _, g := range groups {
		sources = append(sources, g.Source)
		count += len(g.Listings)
	}
	return fmt.Sprintf("[%s] %d new matching assignment%s", strings.Join(sources, ", "), count, plural(count))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"join":   strings.Join,
	"plural": plural,
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;max-width:620px;margin:40px auto;padding:0 16px;color:#1a1a1a;">
  <h2 style="margin-bottom:4px;">New consulting assignments</h2>
  <p style="color:#555;margin-top:0;">{{.Count}} new assignment{{plural .Count}} match your role criteria.</p>
{{- range .Groups}}
  <h3 style="margin:28px 0 12px 0;border-bottom:1px solid #e0e0e0;padding-bottom:6px;">{{.Source}} ({{len .Listings}})</h3>
{{- range .Listings}}
  <div style="margin-bottom:20px;padding:16px;border:1px solid #e0e0e0;border-radius:8px;font-family:sans-serif;">
    <h3 style="margin:0 0 6px 0;">
      <a href="{{.Link}}" style="color:#1a1a1a;text-decoration:none;">{{.Title}}</a>
    </h3>
    <p style="margin:0 0 8px 0;color:#888;font-size:13px;">Posted {{.Date}}</p>
    <p style="margin:0;font-size:13px;">
      <span style="background:#e8f0fe;color:#1a73e8;padding:2px 8px;border-radius:12px;font-weight:600;">{{join .MatchedRoles ", "}}</span>
    </p>
  </div>
{{- end}}
{{- end}}
  <hr style="border:none;border-top:1px solid #e0e0e0;margin:24px 0;">
  <p style="color:#aaa;font-size:12px;margin:0;">Watching: {{join .Roles ", "}}</p>
</body>
</html>
`))

type digestView struct {
	Count  int
	Groups []Group
	Roles  []string
}

// RenderHTML renders the digest email body.
func RenderHTML(groups []Group, roles []string) (string, error) {
	count := 0
	for _, g := range groups {
		count += len(g.Listings)
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, digestView{Count: count, Groups: groups, Roles: roles}); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
