package recommendation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const (
	aiServiceName    = "gemini"
	defaultAITimeout = 60 * time.Second
)

// GenerativeClient is the slice of the Gemini client the pipeline needs.
type GenerativeClient interface {
	Model() string
	SearchGroundedConfig() *genai.GenerateContentConfig
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// AIQueryExecutor sends one search-grounded prompt and returns the model's text.
type AIQueryExecutor struct {
	client  GenerativeClient
	timeout time.Duration
	logger  *slog.Logger
}

func NewAIQueryExecutor(client GenerativeClient, timeout time.Duration, logger *slog.Logger) *AIQueryExecutor {
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &AIQueryExecutor{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Execute runs prompt against the model. Failures are always *types.UpstreamError.
func (e *AIQueryExecutor) Execute(ctx context.Context, prompt string) (string, error) {
	promptHash := PromptHash(prompt)
	ctx, span := otel.Tracer("AIQueryExecutor").Start(ctx, "Execute", trace.WithAttributes(
		attribute.String("prompt.hash", promptHash),
		attribute.String("llm.model", e.client.Model()),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.GenerateResponse(ctx, prompt, e.client.SearchGroundedConfig())
	if err != nil {
		upstream := unavailableError(ctx, err, promptHash)
		e.logger.ErrorContext(ctx, "Gemini request failed",
			slog.String("prompt_hash", promptHash),
			slog.String("type", upstream.Type),
			slog.Int("code", upstream.Code),
			slog.Any("error", err))
		span.RecordError(upstream)
		span.SetStatus(codes.Error, "Gemini request failed")
		return "", upstream
	}

	text, ok := firstCandidateText(resp)
	if !ok {
		upstream := &types.UpstreamError{
			Kind:       types.UpstreamMalformed,
			Service:    aiServiceName,
			Message:    "AI response contained no text",
			PromptHash: promptHash,
		}
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			upstream.Type = string(resp.PromptFeedback.BlockReason)
			if resp.PromptFeedback.BlockReasonMessage != "" {
				upstream.Message = resp.PromptFeedback.BlockReasonMessage
			}
		}
		e.logger.ErrorContext(ctx, "Gemini returned no usable text",
			slog.String("prompt_hash", promptHash),
			slog.String("block_reason", upstream.Type))
		span.RecordError(upstream)
		span.SetStatus(codes.Error, "Empty AI response")
		return "", upstream
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "AI response received")
	return text, nil
}

// firstCandidateText concatenates the text parts of the first candidate that has any.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String(), true
		}
	}
	return "", false
}

func unavailableError(ctx context.Context, err error, promptHash string) *types.UpstreamError {
	upstream := &types.UpstreamError{
		Kind:       types.UpstreamUnavailable,
		Service:    aiServiceName,
		PromptHash: promptHash,
		Err:        err,
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		upstream.Message, upstream.Type, upstream.Code = apiErr.Message, apiErr.Status, apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		upstream.Message, upstream.Type, upstream.Code = apiErrPtr.Message, apiErrPtr.Status, apiErrPtr.Code
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		upstream.Message = "AI request timed out"
		upstream.Type = "timeout"
	}
	return upstream
}
