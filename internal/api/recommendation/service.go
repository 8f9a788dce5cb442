package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-food-recommender/app/observability/metrics"
	"github.com/FACorreiaa/go-food-recommender/config"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const (
	defaultEnrichmentWorkers = 4
	maxEnrichmentWorkers     = 8

	promptNotConstructed = "prompt not yet constructed"
)

var _ Service = (*ServiceImpl)(nil)

// Service produces restaurant recommendations for an authenticated user.
type Service interface {
	// Recommend always returns an envelope. The error is set only when a precondition
	// failed (ErrUnauthenticated, ErrMissingUserInput, ErrConfiguration) and no work was attempted.
	Recommend(ctx context.Context, userID uuid.UUID, rc types.RequestContext) (*types.RecommendationResponse, error)
}

// AreaResolver turns coordinates into a human-readable area. "" means unknown.
type AreaResolver interface {
	AreaDescription(ctx context.Context, lat, lon float64) string
}

// ConfiguredPlacesClient is a PlacesClient that can report whether it has credentials
// and scope its failure tracking to a single request.
type ConfiguredPlacesClient interface {
	PlacesClient
	Configured() bool
	WithRequestBreaker(ctx context.Context) context.Context
}

type pipelineState int

const (
	stateStart pipelineState = iota
	statePromptBuilt
	stateAIQueried
	stateParsed
	stateShortCircuitNoResults
	stateEnriching
	stateFinalized
)

func (s pipelineState) String() string {
	switch s {
	case stateStart:
		return "start"
	case statePromptBuilt:
		return "prompt_built"
	case stateAIQueried:
		return "ai_queried"
	case stateParsed:
		return "parsed"
	case stateShortCircuitNoResults:
		return "short_circuit_no_results"
	case stateEnriching:
		return "enriching"
	case stateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// pipelineRun carries one request through the states. It is never shared between requests.
type pipelineRun struct {
	userID     uuid.UUID
	rc         types.RequestContext
	started    time.Time
	state      pipelineState
	prompt     string
	promptHash string
	rawText    string
	aiLatency  time.Duration
	parsed     ParseOutcome
	candidates []types.AICandidate
	results    []EnrichedResult
	outcome    types.RecommendationOutcome
	response   *types.RecommendationResponse
}

type ServiceImpl struct {
	logger   *slog.Logger
	ai       GenerativeClient
	executor *AIQueryExecutor
	places   ConfiguredPlacesClient
	enricher *PlaceEnricher
	area     AreaResolver
	repo     Repository
	metrics  *metrics.AppMetrics
	prompt   PromptOptions
	workers  int
}

// NewServiceImpl wires the pipeline. ai may be nil when no model credentials are configured;
// requests then fail with a configuration error.
func NewServiceImpl(
	ai GenerativeClient,
	placesClient ConfiguredPlacesClient,
	area AreaResolver,
	repo Repository,
	appMetrics *metrics.AppMetrics,
	cfg config.RecommenderConfig,
	aiTimeout time.Duration,
	logger *slog.Logger,
) *ServiceImpl {
	workers := cfg.EnrichmentWorkers
	if workers <= 0 {
		workers = defaultEnrichmentWorkers
	}
	if workers > maxEnrichmentWorkers {
		workers = maxEnrichmentWorkers
	}

	s := &ServiceImpl{
		logger:   logger,
		ai:       ai,
		places:   placesClient,
		enricher: NewPlaceEnricher(placesClient, logger),
		area:     area,
		repo:     repo,
		metrics:  appMetrics,
		prompt: PromptOptions{
			RecommendationCount: cfg.RecommendationCount,
			FallbackCity:        cfg.FallbackCity,
			CurrencyHint:        cfg.CurrencyHint,
		},
		workers: workers,
	}
	if ai != nil {
		s.executor = NewAIQueryExecutor(ai, aiTimeout, logger)
	}
	return s
}

func (s *ServiceImpl) Recommend(ctx context.Context, userID uuid.UUID, rc types.RequestContext) (resp *types.RecommendationResponse, err error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Bool("request.has_position", rc.EffectiveGeoPosition() != nil),
		attribute.Bool("request.has_location", rc.UserSpecifiedLocation != ""),
	))
	defer span.End()

	if userID == uuid.Nil {
		span.SetStatus(codes.Error, "Unauthenticated")
		return preconditionFailure(types.ErrUnauthenticated), types.ErrUnauthenticated
	}
	if strings.TrimSpace(rc.UserInput) == "" {
		span.SetStatus(codes.Error, "Missing user input")
		return preconditionFailure(types.ErrMissingUserInput), types.ErrMissingUserInput
	}
	if err := s.checkConfiguration(); err != nil {
		s.logger.ErrorContext(ctx, "Recommendation pipeline is not configured", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Configuration error")
		return preconditionFailure(err), err
	}

	run := &pipelineRun{
		userID:  userID,
		rc:      rc,
		started: time.Now(),
		state:   stateStart,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Recovered from panic in recommendation pipeline",
				slog.Any("panic", r),
				slog.String("state", run.state.String()),
				slog.String("prompt_hash", run.promptHash),
				slog.String("stack", string(debug.Stack())))
			span.SetStatus(codes.Error, "Pipeline panic")
			hash := run.promptHash
			if hash == "" {
				hash = promptNotConstructed
			}
			resp = &types.RecommendationResponse{
				Success:    false,
				Message:    fmt.Sprintf("The server hit an unexpected error while processing the AI request, please try again later. Error: %v", r),
				PromptHash: hash,
			}
			err = nil
		}
	}()

	s.run(ctx, run)

	span.SetAttributes(
		attribute.String("prompt.hash", run.promptHash),
		attribute.String("recommendation.outcome", string(run.outcome)),
	)
	if run.response.Success {
		span.SetStatus(codes.Ok, "Recommendation pipeline finished")
	} else {
		span.SetStatus(codes.Error, run.response.Message)
	}
	return run.response, nil
}

// preconditionFailure is the envelope for requests rejected before a prompt exists.
func preconditionFailure(err error) *types.RecommendationResponse {
	return &types.RecommendationResponse{Success: false, Message: err.Error(), PromptHash: promptNotConstructed}
}

func (s *ServiceImpl) checkConfiguration() error {
	if s.ai == nil || s.executor == nil {
		return fmt.Errorf("%w: AI service credentials are not configured", types.ErrConfiguration)
	}
	if s.places == nil || !s.places.Configured() {
		return fmt.Errorf("%w: place data service credentials are not configured", types.ErrConfiguration)
	}
	return nil
}

// run drives the state machine until a response is set.
func (s *ServiceImpl) run(ctx context.Context, run *pipelineRun) {
	defer s.finalize(ctx, run)

	if err := s.buildPrompt(ctx, run); err != nil {
		s.fail(run, types.OutcomeUpstreamFailure, err.Error(), nil)
		return
	}
	if err := s.queryAI(ctx, run); err != nil {
		s.fail(run, types.OutcomeUpstreamFailure, "AI service did not return valid content: "+err.Error(), nil)
		return
	}

	s.parse(ctx, run)
	switch run.parsed.Kind {
	case KindUnparseable:
		cleaned := run.parsed.CleanedText
		s.fail(run, types.OutcomeUnparseable,
			"AI did not return recommendations in valid JSON format: "+run.parsed.Err.Error(), &cleaned)
	case KindNoResults:
		s.shortCircuitNoResults(ctx, run)
	default:
		s.enrich(ctx, run)
	}
}

func (s *ServiceImpl) transition(ctx context.Context, run *pipelineRun, next pipelineState) {
	s.logger.DebugContext(ctx, "Recommendation pipeline transition",
		slog.String("from", run.state.String()),
		slog.String("to", next.String()),
		slog.String("prompt_hash", run.promptHash))
	run.state = next
}

func (s *ServiceImpl) buildPrompt(ctx context.Context, run *pipelineRun) error {
	area := ""
	if pos := run.rc.EffectiveGeoPosition(); pos != nil && s.area != nil {
		area = s.area.AreaDescription(ctx, pos.Latitude, pos.Longitude)
	}

	prompt, err := ComposePrompt(NewPromptInput(run.rc, area, s.prompt))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to compose prompt", slog.Any("error", err))
		return err
	}
	run.prompt = prompt
	run.promptHash = PromptHash(prompt)
	s.transition(ctx, run, statePromptBuilt)
	return nil
}

func (s *ServiceImpl) queryAI(ctx context.Context, run *pipelineRun) error {
	start := time.Now()
	text, err := s.executor.Execute(ctx, run.prompt)
	run.aiLatency = time.Since(start)
	s.metrics.LLMRequestDurationSeconds.Record(ctx, run.aiLatency.Seconds(),
		metric.WithAttributes(attribute.Bool("success", err == nil)))
	if err != nil {
		return err
	}
	run.rawText = text
	s.transition(ctx, run, stateAIQueried)
	return nil
}

func (s *ServiceImpl) parse(ctx context.Context, run *pipelineRun) {
	run.parsed = ParseCandidates(run.rawText)
	if run.parsed.Kind == KindUnparseable {
		s.logger.ErrorContext(ctx, "AI response is not a valid JSON array",
			slog.String("prompt_hash", run.promptHash),
			slog.String("cleaned_text", run.parsed.CleanedText),
			slog.Any("error", run.parsed.Err))
		return
	}
	s.transition(ctx, run, stateParsed)
}

func (s *ServiceImpl) shortCircuitNoResults(ctx context.Context, run *pipelineRun) {
	s.transition(ctx, run, stateShortCircuitNoResults)
	s.logger.InfoContext(ctx, "AI reported no suitable restaurants", slog.String("prompt_hash", run.promptHash))
	run.outcome = types.OutcomeNoResults
	run.response = &types.RecommendationResponse{
		Success:         true,
		Recommendations: run.parsed.Elements,
		PromptHash:      run.promptHash,
	}
}

func (s *ServiceImpl) enrich(ctx context.Context, run *pipelineRun) {
	s.transition(ctx, run, stateEnriching)

	for idx, element := range run.parsed.Elements {
		candidate, err := ValidateCandidate(element)
		if err != nil {
			s.logger.WarnContext(ctx, "Dropping invalid AI recommendation",
				slog.Int("index", idx),
				slog.String("element", string(element)),
				slog.String("prompt_hash", run.promptHash),
				slog.Any("error", err))
			continue
		}
		run.candidates = append(run.candidates, candidate)
	}

	// Lookups of this request share one breaker; other requests never see its state.
	ctx = s.places.WithRequestBreaker(ctx)
	run.results = make([]EnrichedResult, len(run.candidates))
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, candidate := range run.candidates {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.ErrorContext(ctx, "Recovered from panic during place enrichment",
						slog.String("name", candidate.Name),
						slog.Any("panic", r))
					run.results[i] = EnrichedResult{Candidate: candidate, Outcome: OutcomeNotFound}
				}
			}()
			run.results[i] = s.enricher.Enrich(ctx, candidate)
			return nil
		})
	}
	_ = g.Wait()

	recommendations := make([]types.FinalRecommendation, 0, len(run.results))
	anyEnriched := false
	for _, r := range run.results {
		s.metrics.EnrichmentOutcomesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", r.Outcome.String())))
		switch r.Outcome {
		case OutcomeEnriched:
			anyEnriched = true
			recommendations = append(recommendations, s.enricher.Merge(r))
		case OutcomeNotFound:
			recommendations = append(recommendations, aiOnlyRecommendation(r.Candidate, types.SourceAIOnly))
		case OutcomeClosed:
			// dropped
		}
	}

	if !anyEnriched && len(run.parsed.Elements) > 0 {
		s.logger.WarnContext(ctx, "No AI recommendation could be confirmed by the place data service, returning AI data as fallback",
			slog.String("prompt_hash", run.promptHash),
			slog.Int("candidates", len(run.candidates)))
		recommendations = recommendations[:0]
		for _, r := range run.results {
			if r.Outcome == OutcomeClosed {
				continue
			}
			recommendations = append(recommendations, aiOnlyRecommendation(r.Candidate, types.SourceAIOnlyFallback))
		}
	}

	for _, rec := range recommendations {
		s.metrics.RecommendationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", string(rec.Source))))
	}

	run.outcome = types.OutcomeRecommendations
	run.response = &types.RecommendationResponse{
		Success:         true,
		Recommendations: recommendations,
		PromptHash:      run.promptHash,
	}
}

func (s *ServiceImpl) fail(run *pipelineRun, outcome types.RecommendationOutcome, message string, rawText *string) {
	run.outcome = outcome
	run.response = &types.RecommendationResponse{
		Success:    false,
		Message:    message,
		PromptHash: run.promptHash,
		RawText:    rawText,
	}
}

// finalize records metrics and the interaction log for runs that produced a response.
func (s *ServiceImpl) finalize(ctx context.Context, run *pipelineRun) {
	if run.response == nil {
		return
	}
	s.transition(ctx, run, stateFinalized)

	elapsed := time.Since(run.started)
	s.metrics.RecommendationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(run.outcome))))
	s.metrics.PipelineDurationSeconds.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", string(run.outcome))))

	s.logger.InfoContext(ctx, "Recommendation pipeline finished",
		slog.String("prompt_hash", run.promptHash),
		slog.String("outcome", string(run.outcome)),
		slog.Int("candidates", len(run.candidates)),
		slog.Int("recommendations", recommendationCount(run.response)),
		slog.Duration("elapsed", elapsed))

	if run.prompt == "" || s.repo == nil {
		return
	}
	interaction := types.LlmInteraction{
		UserID:              run.userID,
		PromptHash:          run.promptHash,
		Prompt:              run.prompt,
		ResponseText:        run.rawText,
		ModelUsed:           s.ai.Model(),
		Outcome:             run.outcome,
		CandidateCount:      len(run.candidates),
		RecommendationCount: recommendationCount(run.response),
		LatencyMs:           int(run.aiLatency.Milliseconds()),
	}
	if _, err := s.repo.SaveInteraction(ctx, interaction); err != nil {
		s.metrics.DbQueryErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "save_interaction")))
		s.logger.WarnContext(ctx, "Failed to save llm interaction",
			slog.String("prompt_hash", run.promptHash),
			slog.Any("error", err))
	}
}

func recommendationCount(resp *types.RecommendationResponse) int {
	if resp == nil {
		return 0
	}
	if recs, ok := resp.Recommendations.([]types.FinalRecommendation); ok {
		return len(recs)
	}
	return 0
}
