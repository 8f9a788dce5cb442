package metrics

import (
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RecommendationRequestsTotal metric.Int64Counter
	RecommendationsTotal        metric.Int64Counter
	EnrichmentOutcomesTotal     metric.Int64Counter
	LLMRequestDurationSeconds   metric.Float64Histogram
	PipelineDurationSeconds     metric.Float64Histogram
	DbQueryErrorsTotal          metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// NewAppMetrics creates every instrument on meter.
func NewAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.RecommendationRequestsTotal, err = meter.Int64Counter(
		"recommendation_requests_total",
		metric.WithDescription("Total number of recommendation requests by terminal outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation_requests_total: %w", err)
	}

	m.RecommendationsTotal, err = meter.Int64Counter(
		"recommendations_total",
		metric.WithDescription("Total number of recommendations returned by source tier"),
		metric.WithUnit("{recommendation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendations_total: %w", err)
	}

	m.EnrichmentOutcomesTotal, err = meter.Int64Counter(
		"place_enrichment_outcomes_total",
		metric.WithDescription("Total number of place lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create place_enrichment_outcomes_total: %w", err)
	}

	m.LLMRequestDurationSeconds, err = meter.Float64Histogram(
		"llm_request_duration_seconds",
		metric.WithDescription("Duration of generative model requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_request_duration_seconds: %w", err)
	}

	m.PipelineDurationSeconds, err = meter.Float64Histogram(
		"recommendation_duration_seconds",
		metric.WithDescription("Duration of the whole recommendation pipeline in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation_duration_seconds: %w", err)
	}

	m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_errors_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := NewAppMetrics(otel.GetMeterProvider().Meter("FoodRecommender"))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
