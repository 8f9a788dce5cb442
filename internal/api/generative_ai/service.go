package generativeAI

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-food-recommender/config"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const DefaultModel = "gemini-2.0-flash"

type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewAIClient builds a Gemini client from configuration. A missing API key is a
// configuration error rather than a fatal one so the server can still start.
func NewAIClient(ctx context.Context, cfg config.GenAIConfig) (*AIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_GEMINI_API_KEY is not set", types.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &AIClient{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the model name requests are sent to.
func (ai *AIClient) Model() string {
	return ai.model
}

// SearchGroundedConfig enables the Google Search tool so the model can look venues up.
func (ai *AIClient) SearchGroundedConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](ai.temperature),
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
}

func (ai *AIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
}
