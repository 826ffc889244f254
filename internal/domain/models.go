package domain

import (
	"sort"
	"strings"
)

// Domain contains core models shared by sources, classifier, storage and notifier.

// IDDelimiter separates the source id from the provider-native id in a qualified listing ID.
const IDDelimiter = ":"

// Listing is one assignment/tender record normalized across sources.
type Listing struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Date         string   `json:"date"`
	Link         string   `json:"link"`
	Source       string   `json:"source,omitempty"`
	MatchedRoles []string `json:"matched_roles,omitempty"`
}

// Matched reports whether the classifier tagged the listing with at least one role.
func (l Listing) Matched() bool {
	return len(l.MatchedRoles) > 0
}

// QualifyID prefixes a native id with the source id unless it already carries a prefix.
func QualifyID(sourceID, id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, IDDelimiter) {
		return id
	}
	return sourceID + IDDelimiter + id
}

// SeenSet holds the listing IDs that were already processed.
type SeenSet map[string]struct{}

// NewSeenSet builds a set from the given ids.
func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add records id as seen. Empty ids are ignored.
func (s SeenSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id was seen.
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of seen ids.
func (s SeenSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s SeenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s SeenSet) Clone() SeenSet {
	out := make(SeenSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}
