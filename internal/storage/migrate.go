package storage

import (
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

type format int

const (
	formatPrefixed format = iota
	formatLegacy
)

// detectFormat reports formatLegacy for a non-empty id list whose first entry has no
// source prefix. Files written by this version always lead with a prefixed id.
func detectFormat(ids []string) format {
	if len(ids) == 0 {
		return formatPrefixed
	}
	if strings.Contains(ids[0], domain.IDDelimiter) {
		return formatPrefixed
	}
	return formatLegacy
}

// MigrateLegacy rewrites unprefixed ids as "<sourceID>:<id>". Already prefixed ids are kept.
func MigrateLegacy(ids []string, sourceID string) domain.SeenSet {
	out := make(domain.SeenSet, len(ids))
	for _, id := range ids {
		out.Add(domain.QualifyID(sourceID, id))
	}
	return out
}
