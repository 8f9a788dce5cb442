//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-food-recommender/config"
)

func TestMain(m *testing.M) {
	if os.Getenv("GOOGLE_GEMINI_API_KEY") == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func integrationConfig() config.GenAIConfig {
	return config.GenAIConfig{
		APIKey:      os.Getenv("GOOGLE_GEMINI_API_KEY"),
		Model:       DefaultModel,
		Temperature: 0.3,
		Timeout:     60 * time.Second,
	}
}

func TestAIClient_SearchGrounded_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	client, err := NewAIClient(ctx, integrationConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.Model())

	t.Run("search grounded answer", func(t *testing.T) {
		prompt := "Using web search, name one well known beef noodle restaurant in Taipei. Answer with the name only."
		response, err := client.GenerateResponse(ctx, prompt, client.SearchGroundedConfig())
		require.NoError(t, err)
		require.NotNil(t, response)
		assert.NotEmpty(t, strings.TrimSpace(response.Text()))
	})

	t.Run("json array contract", func(t *testing.T) {
		prompt := `Reply only with a JSON array containing one object {"name": "<a restaurant in Taipei>", "address": "<its address>"}. No markdown.`
		response, err := client.GenerateResponse(ctx, prompt, client.SearchGroundedConfig())
		require.NoError(t, err)
		text := strings.TrimSpace(response.Text())
		text = strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```")
		assert.Contains(t, text, "[")
	})
}
