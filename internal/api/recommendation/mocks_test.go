package recommendation

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-food-recommender/app/observability/metrics"
	"github.com/FACorreiaa/go-food-recommender/internal/api/places"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

type MockGenerativeClient struct {
	mock.Mock
}

func (m *MockGenerativeClient) Model() string {
	return "gemini-test"
}

func (m *MockGenerativeClient) SearchGroundedConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}}
}

func (m *MockGenerativeClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	args := m.Called(ctx, interaction)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// stubPlaces answers from fixed tables and counts calls. It is safe for concurrent use.
type stubPlaces struct {
	mu           sync.Mutex
	configured   bool
	details      map[string]*types.PlaceRecord
	detailsErr   map[string]error
	findIDs      map[string]string
	findErr      error
	detailsCalls []string
	findCalls    []string
	// scopes counts request breakers handed out; unscopedCalls counts lookups made without one.
	scopes        int
	unscopedCalls int
}

type stubScopeKey struct{}

func newStubPlaces() *stubPlaces {
	return &stubPlaces{
		configured: true,
		details:    map[string]*types.PlaceRecord{},
		detailsErr: map[string]error{},
		findIDs:    map[string]string{},
	}
}

func (s *stubPlaces) Configured() bool {
	return s.configured
}

func (s *stubPlaces) WithRequestBreaker(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes++
	return context.WithValue(ctx, stubScopeKey{}, s.scopes)
}

func (s *stubPlaces) noteScope(ctx context.Context) {
	if ctx.Value(stubScopeKey{}) == nil {
		s.unscopedCalls++
	}
}

func (s *stubPlaces) PlaceDetails(ctx context.Context, placeID string) (*types.PlaceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteScope(ctx)
	s.detailsCalls = append(s.detailsCalls, placeID)
	if err, ok := s.detailsErr[placeID]; ok {
		return nil, err
	}
	if record, ok := s.details[placeID]; ok {
		return record, nil
	}
	return nil, places.ErrPlaceNotFound
}

func (s *stubPlaces) FindPlaceID(ctx context.Context, name, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteScope(ctx)
	s.findCalls = append(s.findCalls, name+" "+address)
	if s.findErr != nil {
		return "", s.findErr
	}
	if id, ok := s.findIDs[name]; ok {
		return id, nil
	}
	return "", places.ErrPlaceNotFound
}

func (s *stubPlaces) PhotoURL(photoReference string) string {
	return "https://maps.example/photo?maxwidth=400&photoreference=" + photoReference + "&key=k"
}

func (s *stubPlaces) calls() (details, find int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.detailsCalls), len(s.findCalls)
}

type stubArea struct {
	area  string
	calls int
}

func (s *stubArea) AreaDescription(_ context.Context, _, _ float64) string {
	s.calls++
	return s.area
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.AppMetrics {
	m, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		panic(err)
	}
	return m
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
