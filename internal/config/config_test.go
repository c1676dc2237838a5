package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinposter/internal/models"
)

func baseConfig() *Config {
	return &Config{
		LLMAPIKey:   "env-key",
		LLMModel:    "env-model",
		AccessToken: "env-token",
		BoardID:     "env-board",
		WebsiteURL:  "https://env.example",
		Sandbox:     false,
	}
}

func TestResolve(t *testing.T) {
	t.Run("empty overrides keep the baseline", func(t *testing.T) {
		rc := baseConfig().Resolve(models.ClientConfig{})
		assert.Equal(t, "env-key", rc.LLMAPIKey)
		assert.Equal(t, "env-board", rc.BoardID)
		assert.False(t, rc.Sandbox)
	})

	t.Run("overrides win per field", func(t *testing.T) {
		rc := baseConfig().Resolve(models.ClientConfig{
			AccessToken: "req-token",
			BoardID:     "req-board",
		})
		assert.Equal(t, "req-token", rc.AccessToken)
		assert.Equal(t, "req-board", rc.BoardID)
		assert.Equal(t, "env-model", rc.LLMModel)
	})

	t.Run("sandbox is strict about the string true", func(t *testing.T) {
		assert.True(t, baseConfig().Resolve(models.ClientConfig{Sandbox: "true"}).Sandbox)
		assert.False(t, baseConfig().Resolve(models.ClientConfig{Sandbox: "TRUE"}).Sandbox)
		assert.False(t, baseConfig().Resolve(models.ClientConfig{Sandbox: "1"}).Sandbox)
	})

	t.Run("empty sandbox keeps the baseline value", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Sandbox = true
		assert.True(t, cfg.Resolve(models.ClientConfig{}).Sandbox)
	})

	t.Run("whitespace only overrides are ignored", func(t *testing.T) {
		rc := baseConfig().Resolve(models.ClientConfig{BoardID: "   "})
		assert.Equal(t, "env-board", rc.BoardID)
	})
}

func TestRequirePublish(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		rc := RequestConfig{AccessToken: "pina_token", BoardID: "123"}
		require.NoError(t, rc.RequirePublish())
	})

	t.Run("placeholder token fails", func(t *testing.T) {
		rc := RequestConfig{AccessToken: "YOUR_ACCESS_TOKEN", BoardID: "123"}
		var cfgErr ConfigurationError
		require.ErrorAs(t, rc.RequirePublish(), &cfgErr)
		assert.Equal(t, "access token", cfgErr.Field)
	})

	t.Run("missing board fails", func(t *testing.T) {
		rc := RequestConfig{AccessToken: "pina_token"}
		var cfgErr ConfigurationError
		require.ErrorAs(t, rc.RequirePublish(), &cfgErr)
		assert.Equal(t, "board id", cfgErr.Field)
	})
}

func TestIsPlaceholderToken(t *testing.T) {
	assert.True(t, IsPlaceholderToken(""))
	assert.True(t, IsPlaceholderToken("   "))
	assert.True(t, IsPlaceholderToken("YOUR_ACCESS_TOKEN"))
	assert.True(t, IsPlaceholderToken("YOUR_TOKEN_HERE"))
	assert.False(t, IsPlaceholderToken("pina_AbC123"))
}
