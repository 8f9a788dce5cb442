package types

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationOutcome is the terminal state a recommendation request finished in.
type RecommendationOutcome string

const (
	OutcomeRecommendations RecommendationOutcome = "recommendations"
	OutcomeNoResults       RecommendationOutcome = "no_results"
	OutcomeUnparseable     RecommendationOutcome = "unparseable"
	OutcomeUpstreamFailure RecommendationOutcome = "upstream_failure"
)

// LlmInteraction is the audit row stored for every recommendation request that reached the model.
type LlmInteraction struct {
	ID                  uuid.UUID             `json:"id"`
	UserID              uuid.UUID             `json:"user_id"`
	PromptHash          string                `json:"prompt_hash"`
	Prompt              string                `json:"prompt"`
	ResponseText        string                `json:"response_text"`
	ModelUsed           string                `json:"model_used"`
	Outcome             RecommendationOutcome `json:"outcome"`
	CandidateCount      int                   `json:"candidate_count"`
	RecommendationCount int                   `json:"recommendation_count"`
	LatencyMs           int                   `json:"latency_ms"`
	CreatedAt           time.Time             `json:"created_at"`
}
