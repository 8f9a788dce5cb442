package recommendation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists the audit trail of recommendation requests.
type Repository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error)
}

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool Querier
}

func NewRepository(pgpool Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "SaveInteraction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "llm_interactions"),
		attribute.String("user.id", interaction.UserID.String()),
		attribute.String("model.used", interaction.ModelUsed),
		attribute.Int("latency.ms", interaction.LatencyMs),
	))
	defer span.End()

	query := `
        INSERT INTO llm_interactions (
            user_id, prompt_hash, prompt, response_text, model_used,
            outcome, candidate_count, recommendation_count, latency_ms
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
    `

	var interactionID uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		interaction.UserID,
		interaction.PromptHash,
		interaction.Prompt,
		interaction.ResponseText,
		interaction.ModelUsed,
		string(interaction.Outcome),
		interaction.CandidateCount,
		interaction.RecommendationCount,
		interaction.LatencyMs,
	).Scan(&interactionID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert llm interaction",
			slog.String("prompt_hash", interaction.PromptHash),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert interaction")
		return uuid.Nil, fmt.Errorf("failed to insert interaction: %w", err)
	}

	span.SetAttributes(attribute.String("interaction.id", interactionID.String()))
	span.SetStatus(codes.Ok, "Interaction saved successfully")
	return interactionID, nil
}
