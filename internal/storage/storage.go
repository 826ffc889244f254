package storage

import (
	"fmt"
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// Package storage persists the set of listing IDs already processed.

// Store loads and saves the SeenSet between runs.
type Store interface {
	Load() (domain.SeenSet, error)
	Save(seen domain.SeenSet) error
	Close() error
}

const (
	TypeJSON  = "json"
	TypeBBolt = "bbolt"
)

// Options controls backend specifics.
type Options struct {
	// LegacySourceID prefixes ids found in the pre-prefix JSON format.
	LegacySourceID string
}

const defaultLegacySourceID = "upgraded"

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s storage requires a path", typ)
	}

	switch typ {
	case "", TypeJSON:
		return newJSONStore(path, opts), nil
	case TypeBBolt:
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	opts.LegacySourceID = strings.TrimSpace(opts.LegacySourceID)
	if opts.LegacySourceID == "" {
		opts.LegacySourceID = defaultLegacySourceID
	}
	return opts
}
