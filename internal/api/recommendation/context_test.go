package recommendation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

func TestContextAssembler_Assemble(t *testing.T) {
	assembler := NewContextAssembler(discardLogger())
	ctx := context.Background()

	t.Run("full context is normalized", func(t *testing.T) {
		raw := json.RawMessage(`{
			"userInput": "  spicy hot pot ",
			"userSpecifiedLocation": " Da'an District ",
			"currentGeoPosition": {"latitude": 25.033, "longitude": 121.5654},
			"calendarEvents": [{"summary": " Lunch ", "startTime": "12:00", "endTime": "13:00", "location": "Office"}, {}],
			"weather": {"description": "light rain", "temperature": "18.5"},
			"preferences": {"likes": ["noodles", " ", "tofu"], "dislikes": ["cilantro"]}
		}`)

		rc, err := assembler.Assemble(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "spicy hot pot", rc.UserInput)
		assert.Equal(t, "Da'an District", rc.UserSpecifiedLocation)
		require.NotNil(t, rc.EffectiveGeoPosition())
		assert.Equal(t, 25.033, rc.EffectiveGeoPosition().Latitude)
		require.Len(t, rc.CalendarEvents, 1)
		assert.Equal(t, "Lunch", rc.CalendarEvents[0].Summary)
		assert.Equal(t, "light rain", rc.Weather.Description)
		require.NotNil(t, rc.Weather.Temperature)
		assert.Equal(t, 18.5, *rc.Weather.Temperature)
		assert.Equal(t, []string{"noodles", "tofu"}, rc.Preferences.Likes)
		assert.Equal(t, []string{"cilantro"}, rc.Preferences.Dislikes)
	})

	t.Run("defaults for missing weather and preferences", func(t *testing.T) {
		rc, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput":"ramen"}`))
		require.NoError(t, err)
		assert.Equal(t, "unknown", rc.Weather.Description)
		assert.Nil(t, rc.Weather.Temperature)
		assert.NotNil(t, rc.Preferences.Likes)
		assert.Empty(t, rc.Preferences.Likes)
		assert.Empty(t, rc.Preferences.Dislikes)
		assert.Nil(t, rc.EffectiveGeoPosition())
	})

	t.Run("initial position used when current is absent", func(t *testing.T) {
		rc, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput":"ramen","initialGeoPosition":{"latitude":24.1,"longitude":120.6}}`))
		require.NoError(t, err)
		require.NotNil(t, rc.EffectiveGeoPosition())
		assert.Equal(t, 24.1, rc.EffectiveGeoPosition().Latitude)
	})

	t.Run("out of range position is discarded", func(t *testing.T) {
		rc, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput":"ramen","currentGeoPosition":{"latitude":125,"longitude":10}}`))
		require.NoError(t, err)
		assert.Nil(t, rc.CurrentGeoPosition)
	})

	t.Run("numeric temperature", func(t *testing.T) {
		rc, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput":"ramen","weather":{"description":"","temperature":30}}`))
		require.NoError(t, err)
		assert.Equal(t, "unknown", rc.Weather.Description)
		require.NotNil(t, rc.Weather.Temperature)
		assert.Equal(t, 30.0, *rc.Weather.Temperature)
	})

	t.Run("blank user input", func(t *testing.T) {
		_, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput":"   "}`))
		assert.ErrorIs(t, err, types.ErrMissingUserInput)
	})

	t.Run("missing user input", func(t *testing.T) {
		_, err := assembler.Assemble(ctx, json.RawMessage(`{"weather":{"description":"sunny"}}`))
		assert.ErrorIs(t, err, types.ErrMissingUserInput)
	})

	t.Run("context must be an object", func(t *testing.T) {
		for _, raw := range []string{``, `null`, `"text"`, `[1,2]`, `42`} {
			_, err := assembler.Assemble(ctx, json.RawMessage(raw))
			assert.ErrorIs(t, err, types.ErrInvalidContext, "raw=%q", raw)
		}
	})

	t.Run("wrong field types", func(t *testing.T) {
		_, err := assembler.Assemble(ctx, json.RawMessage(`{"userInput": 42}`))
		assert.ErrorIs(t, err, types.ErrInvalidContext)
	})
}
