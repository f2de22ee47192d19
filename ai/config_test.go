package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.OracleHost)
		assert.NotEmpty(t, cfg.EmbeddingModel)
		assert.NotEmpty(t, cfg.OracleModel)
		assert.Equal(t, 0.1, cfg.Temperature)
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://example.com/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithOracleModel("gpt-4o-mini"),
			WithTemperature(0),
		)
		assert.Equal(t, "http://example.com/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://example.com/v1", cfg.OracleHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.OracleModel)
		assert.Equal(t, 0.0, cfg.Temperature)
	})

	t.Run("separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed.local/v1"),
			WithOracleHost("http://oracle.local/v1"),
		)
		assert.Equal(t, "http://embed.local/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://oracle.local/v1", cfg.OracleHost)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.OracleHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing oracle model", func(t *testing.T) {
		cfg := NewConfig(WithOracleModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("out of range temperature", func(t *testing.T) {
		cfg := NewConfig(WithTemperature(3.5))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes hosts", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}
