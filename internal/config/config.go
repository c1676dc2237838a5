package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"pinposter/internal/models"
)

// Config holds the process-level configuration loaded from the environment.
// It is the baseline that per-request overrides are merged onto; the merged
// result is a RequestConfig value, never shared mutable state.
type Config struct {
	ListenAddr string

	LLMAPIKey  string
	LLMBaseURL string // OpenAI-compatible endpoint; empty means the provider default
	LLMModel   string

	AccessToken string
	BoardID     string
	WebsiteURL  string
	AppID       string
	AppSecret   string
	Sandbox     bool
}

// RequestConfig is the immutable view of the configuration for a single
// request. Every component call receives one of these explicitly.
type RequestConfig struct {
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	AccessToken string
	BoardID     string
	WebsiteURL  string
	Sandbox     bool
}

// ConfigurationError reports missing or placeholder credentials.
type ConfigurationError struct {
	Field string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}

// Load reads configuration from the environment. A .env file is honored if
// present (useful for development).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMBaseURL:  getEnv("LLM_BASE_URL", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		AccessToken: getEnv("PINTEREST_ACCESS_TOKEN", ""),
		BoardID:     getEnv("PINTEREST_BOARD_ID", ""),
		WebsiteURL:  getEnv("WEBSITE_URL", "https://example.com"),
		AppID:       getEnv("PINTEREST_APP_ID", ""),
		AppSecret:   getEnv("PINTEREST_APP_SECRET", ""),
		Sandbox:     getEnv("PINTEREST_SANDBOX", "false") == "true",
	}
}

// Resolve merges per-request overrides onto the baseline, last write wins per
// field. The sandbox flag is only true for the exact string "true".
func (c *Config) Resolve(o models.ClientConfig) RequestConfig {
	rc := RequestConfig{
		LLMAPIKey:   c.LLMAPIKey,
		LLMBaseURL:  c.LLMBaseURL,
		LLMModel:    c.LLMModel,
		AccessToken: c.AccessToken,
		BoardID:     c.BoardID,
		WebsiteURL:  c.WebsiteURL,
		Sandbox:     c.Sandbox,
	}

	if v := strings.TrimSpace(o.LLMAPIKey); v != "" {
		rc.LLMAPIKey = v
	}
	if v := strings.TrimSpace(o.LLMModel); v != "" {
		rc.LLMModel = v
	}
	if v := strings.TrimSpace(o.AccessToken); v != "" {
		rc.AccessToken = v
	}
	if v := strings.TrimSpace(o.BoardID); v != "" {
		rc.BoardID = v
	}
	if v := strings.TrimSpace(o.WebsiteURL); v != "" {
		rc.WebsiteURL = v
	}
	if o.Sandbox != "" {
		rc.Sandbox = o.Sandbox == "true"
	}
	return rc
}

// RequirePublish checks the fields a publish attempt depends on. The shipped
// UI leaves "YOUR_ACCESS_TOKEN" style placeholders in its config box, so
// those count as absent.
func (rc RequestConfig) RequirePublish() error {
	if IsPlaceholderToken(rc.AccessToken) {
		return ConfigurationError{Field: "access token"}
	}
	if strings.TrimSpace(rc.BoardID) == "" {
		return ConfigurationError{Field: "board id"}
	}
	return nil
}

// RequireGeneration checks the fields the content generator depends on.
func (rc RequestConfig) RequireGeneration() error {
	if strings.TrimSpace(rc.LLMAPIKey) == "" {
		return ConfigurationError{Field: "LLM API key"}
	}
	return nil
}

// IsPlaceholderToken reports whether the token is empty or an obvious
// template value.
func IsPlaceholderToken(token string) bool {
	token = strings.TrimSpace(token)
	return token == "" || strings.HasPrefix(token, "YOUR_")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
