package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "multilingual-e5-small", cfg.Model)
	assert.Equal(t, 2000, cfg.MaxTextRunes)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://embed.internal:9100"),
		WithModel("multilingual-e5-base"),
		WithMaxTextRunes(512),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://embed.internal:9100/v1", cfg.Host)
	assert.Equal(t, "multilingual-e5-base", cfg.Model)
	assert.Equal(t, 512, cfg.MaxTextRunes)
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("strips trailing slash before suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("idempotent", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive truncation limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxTextRunes = 0
		assert.Error(t, cfg.Validate())
	})
}
