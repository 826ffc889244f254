package providers

import (
	"strconv"
	"strings"
)

const (
	ConfigPerPageKey      = "per_page"
	ConfigMaxPagesKey     = "max_pages"
	ConfigPageSizeKey     = "page_size"
	ConfigAPIKeyEnvKey    = "api_key_env"
	ConfigDashboardURLKey = "dashboard_url"
	ConfigUserAgentKey    = "user_agent"
)

// ConfigString returns the trimmed string value for key from provider.Config or a fallback.
func ConfigString(cfg Provider, key, fallback string) string {
	if cfg.Config != nil {
		if raw, ok := cfg.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

// ConfigInt returns a positive integer value for key, accepting the numeric shapes
// produced by YAML and JSON decoding. Anything else yields fallback.
func ConfigInt(cfg Provider, key string, fallback int) int {
	if cfg.Config == nil {
		return fallback
	}
	var n int
	switch v := cfg.Config[key].(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		n = parsed
	default:
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}

// Headers builds the common request headers from a provider config (skips empty values).
func Headers(cfg Provider) map[string]string {
	headers := make(map[string]string, 2)
	headers["Accept"] = "application/json"
	if v := ConfigString(cfg, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	return headers
}
