package recommendation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

func TestRepositoryImpl_SaveInteraction(t *testing.T) {
	interaction := types.LlmInteraction{
		UserID:              uuid.New(),
		PromptHash:          "0123456789abcdef0123456789abcdef",
		Prompt:              "prompt",
		ResponseText:        "[]",
		ModelUsed:           "gemini-2.0-flash",
		Outcome:             types.OutcomeRecommendations,
		CandidateCount:      3,
		RecommendationCount: 2,
		LatencyMs:           1200,
	}

	t.Run("inserts and returns id", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		id := uuid.New()
		pool.ExpectQuery("INSERT INTO llm_interactions").
			WithArgs(interaction.UserID, interaction.PromptHash, interaction.Prompt, interaction.ResponseText,
				interaction.ModelUsed, "recommendations", 3, 2, 1200).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

		repo := NewRepository(pool, discardLogger())
		got, err := repo.SaveInteraction(context.Background(), interaction)
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("insert failure", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		pool.ExpectQuery("INSERT INTO llm_interactions").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("relation does not exist"))

		repo := NewRepository(pool, discardLogger())
		got, err := repo.SaveInteraction(context.Background(), interaction)
		require.Error(t, err)
		assert.Equal(t, uuid.Nil, got)
		assert.Contains(t, err.Error(), "failed to insert interaction")
		assert.Contains(t, err.Error(), "relation does not exist")
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}
