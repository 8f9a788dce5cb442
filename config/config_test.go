package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("file defaults", func(t *testing.T) {
		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "8000", cfg.Server.HTTPPort)
		assert.Equal(t, 90*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 60*time.Second, cfg.GenAI.Timeout)
		assert.Equal(t, 4, cfg.Recommender.EnrichmentWorkers)
		assert.Equal(t, 3, cfg.Recommender.RecommendationCount)
		assert.Equal(t, "Taipei City", cfg.Recommender.FallbackCity)
		assert.Equal(t, "zh-TW", cfg.Places.Language)
		assert.NotEmpty(t, cfg.Server.AllowedOrigins)
	})

	t.Run("well-known secrets override the file", func(t *testing.T) {
		t.Setenv("GOOGLE_GEMINI_API_KEY", "gemini-key")
		t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
		t.Setenv("JWT_SECRET_KEY", "jwt-secret")

		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "gemini-key", cfg.GenAI.APIKey)
		assert.Equal(t, "maps-key", cfg.Places.APIKey)
		assert.Equal(t, "jwt-secret", cfg.JWT.SecretKey)
	})
}
