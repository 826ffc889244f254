package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings loaded from environment variables and .env files.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ConfigPath  string `mapstructure:"config_path"`
	SourcesFile string `mapstructure:"sources_file"`
	SinksFile   string `mapstructure:"sinks_file"`

	StorageType      string `mapstructure:"storage_type"`
	SeenPath         string `mapstructure:"seen_path"`
	BBoltPath        string `mapstructure:"bbolt_path"`
	LegacySourceID   string `mapstructure:"legacy_source_id"`
	HTTPTimeoutSecs  int64  `mapstructure:"http_timeout_seconds"`
	ClassifierType   string `mapstructure:"classifier_provider"`
	ClassifierModel  string `mapstructure:"classifier_model"`
	ClassifierTokens int    `mapstructure:"classifier_max_tokens"`
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key" json:"-"`
	AnthropicURL     string `mapstructure:"anthropic_url"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key" json:"-"`
	ResendAPIKey     string `mapstructure:"resend_api_key" json:"-"`
	ResendURL        string `mapstructure:"resend_url"`
	FromEmail        string `mapstructure:"from_email"`

	HTTPTimeout time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and the optional configs/.env file.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "upgraded-notifs")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("config_path", "./config.json")
	v.SetDefault("sources_file", "")
	v.SetDefault("sinks_file", "")
	v.SetDefault("storage_type", "json")
	v.SetDefault("seen_path", "./data/seen.json")
	v.SetDefault("bbolt_path", "./data/seen.db")
	v.SetDefault("legacy_source_id", "upgraded")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("classifier_provider", "anthropic")
	v.SetDefault("classifier_model", "")
	v.SetDefault("classifier_max_tokens", 256)
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("resend_api_key", "")
	v.SetDefault("resend_url", "https://api.resend.com/emails/batch")
	v.SetDefault("from_email", "onboarding@resend.dev")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.ClassifierType = strings.ToLower(strings.TrimSpace(c.ClassifierType))
	c.FromEmail = strings.TrimSpace(c.FromEmail)
	if c.FromEmail == "" {
		c.FromEmail = "onboarding@resend.dev"
	}

	if c.HTTPTimeoutSecs <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSecs) * time.Second

	if c.ClassifierTokens <= 0 {
		return fmt.Errorf("invalid classifier_max_tokens (must be positive)")
	}
	if strings.TrimSpace(c.ConfigPath) == "" {
		return fmt.Errorf("config_path is required")
	}
	return nil
}
