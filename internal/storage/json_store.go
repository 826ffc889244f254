package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// jsonStore keeps the SeenSet as a sorted, indented JSON array in a single file.
type jsonStore struct {
	path     string
	legacyID string
}

func newJSONStore(path string, opts Options) *jsonStore {
	return &jsonStore{path: path, legacyID: opts.LegacySourceID}
}

// Load reads the file, migrating and re-saving the legacy unprefixed format when found.
func (s *jsonStore) Load() (domain.SeenSet, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewSeenSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen file: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode seen file: %w", err)
	}

	if detectFormat(ids) == formatLegacy {
		migrated := MigrateLegacy(ids, s.legacyID)
		if err := s.Save(migrated); err != nil {
			return nil, fmt.Errorf("save migrated seen file: %w", err)
		}
		return migrated, nil
	}

	return domain.NewSeenSet(ids...), nil
}

// Save writes the ids sorted, two-space indented and newline-terminated.
func (s *jsonStore) Save(seen domain.SeenSet) error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}

	ids := seen.Sorted()
	payload, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen ids: %w", err)
	}
	payload = append(payload, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp seen file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp seen file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp seen file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace seen file: %w", err)
	}
	return nil
}

func (s *jsonStore) Close() error { return nil }
