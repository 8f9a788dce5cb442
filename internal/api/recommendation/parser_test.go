package recommendation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

func TestCleanAIText(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[]\n```  ", "[]"},
		{"no fence", "  [1] ", "[1]"},
		{"trailing fence only", "[1]\n```", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanAIText(tt.raw))
		})
	}
}

func TestParseCandidates(t *testing.T) {
	t.Run("candidate array", func(t *testing.T) {
		out := ParseCandidates("```json\n[{\"name\":\"A\",\"address\":\"1 St\"},{\"name\":\"B\",\"address\":\"2 St\"}]\n```")
		assert.Equal(t, KindCandidates, out.Kind)
		assert.Len(t, out.Elements, 2)
		assert.NoError(t, out.Err)
	})

	t.Run("no results sentinel", func(t *testing.T) {
		out := ParseCandidates(`[{"status":"NO_RESULTS","message":"nothing"}]`)
		assert.Equal(t, KindNoResults, out.Kind)
		require.Len(t, out.Elements, 1)
		assert.JSONEq(t, `{"status":"NO_RESULTS","message":"nothing"}`, string(out.Elements[0]))
	})

	t.Run("empty array", func(t *testing.T) {
		out := ParseCandidates(`[]`)
		assert.Equal(t, KindCandidates, out.Kind)
		assert.Empty(t, out.Elements)
	})

	t.Run("prose is unparseable", func(t *testing.T) {
		out := ParseCandidates("Here are some great restaurants!")
		assert.Equal(t, KindUnparseable, out.Kind)
		assert.Equal(t, "Here are some great restaurants!", out.CleanedText)
		var parseErr *types.ParseError
		assert.True(t, errors.As(out.Err, &parseErr))
	})

	t.Run("object is unparseable", func(t *testing.T) {
		out := ParseCandidates(`{"name":"A"}`)
		assert.Equal(t, KindUnparseable, out.Kind)
	})

	t.Run("truncated array is unparseable", func(t *testing.T) {
		out := ParseCandidates(`[{"name":"A",`)
		assert.Equal(t, KindUnparseable, out.Kind)
		assert.Equal(t, `[{"name":"A",`, out.CleanedText)
	})
}

func TestValidateCandidate(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		c, err := ValidateCandidate(json.RawMessage(`{"name":"A","address":"1 St","place_id":"p1","ai_rating":4.5,"ai_image_url":"http://img","reason":"good","cost":"NT$200"}`))
		require.NoError(t, err)
		assert.Equal(t, "A", c.Name)
		assert.Equal(t, "p1", c.PlaceID)
		require.NotNil(t, c.AIRating)
		assert.Equal(t, 4.5, *c.AIRating)
		assert.Equal(t, "http://img", c.AIImageURL)
		assert.Equal(t, "good", c.Reason)
		assert.Equal(t, "NT$200", c.Cost)
	})

	t.Run("rating as string", func(t *testing.T) {
		c, err := ValidateCandidate(json.RawMessage(`{"name":"A","address":"1 St","ai_rating":"4.2"}`))
		require.NoError(t, err)
		require.NotNil(t, c.AIRating)
		assert.Equal(t, 4.2, *c.AIRating)
	})

	t.Run("null and unusable values", func(t *testing.T) {
		c, err := ValidateCandidate(json.RawMessage(`{"name":"A","address":"1 St","ai_rating":null,"place_id":123,"reason":null}`))
		require.NoError(t, err)
		assert.Nil(t, c.AIRating)
		assert.Empty(t, c.PlaceID)
		assert.Empty(t, c.Reason)
	})

	invalid := map[string]string{
		"missing name":    `{"address":"1 St"}`,
		"blank name":      `{"name":"  ","address":"1 St"}`,
		"missing address": `{"name":"A"}`,
		"non-string name": `{"name":5,"address":"1 St"}`,
		"null address":    `{"name":"A","address":null}`,
		"not an object":   `"A"`,
		"null element":    `null`,
	}
	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateCandidate(json.RawMessage(raw))
			assert.ErrorIs(t, err, types.ErrCandidateInvalid)
		})
	}
}
