package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Digest is the user-facing configuration file: which roles to watch and who gets the email.
type Digest struct {
	Roles          []string `json:"roles" yaml:"roles"`
	RecipientEmail string   `json:"recipient_email" yaml:"recipient_email"`
}

// LoadDigest reads the digest configuration from a JSON or YAML file.
func LoadDigest(path string) (*Digest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("digest config path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read digest config: %w", err)
	}

	var d Digest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode yaml digest config: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode json digest config: %w", err)
		}
	}

	d = sanitizeDigest(d)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that the digest has something to watch and somewhere to send it.
func (d Digest) Validate() error {
	if len(d.Roles) == 0 {
		return errors.New("digest config: roles must not be empty")
	}
	if d.RecipientEmail == "" {
		return errors.New("digest config: recipient_email is required")
	}
	return nil
}

func sanitizeDigest(d Digest) Digest {
	roles := make([]string, 0, len(d.Roles))
	seen := make(map[string]bool, len(d.Roles))
	for _, r := range d.Roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	d.Roles = roles
	d.RecipientEmail = strings.TrimSpace(d.RecipientEmail)
	return d
}
