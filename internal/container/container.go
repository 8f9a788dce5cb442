package container

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-food-recommender/app/observability/metrics"
	"github.com/FACorreiaa/go-food-recommender/config"
	generativeAI "github.com/FACorreiaa/go-food-recommender/internal/api/generative_ai"
	"github.com/FACorreiaa/go-food-recommender/internal/api/places"
	"github.com/FACorreiaa/go-food-recommender/internal/api/recommendation"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config                *config.Config
	Logger                *slog.Logger
	Pool                  *pgxpool.Pool
	RecommendationHandler *recommendation.HandlerImpl
}

// NewContainer wires the recommendation pipeline. Missing provider credentials do not fail
// startup; the endpoint answers with a configuration error instead.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, appMetrics *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	var aiClient recommendation.GenerativeClient
	client, err := generativeAI.NewAIClient(ctx, cfg.GenAI)
	switch {
	case err == nil:
		aiClient = client
	case errors.Is(err, types.ErrConfiguration):
		logger.Warn("Generative AI client is not configured", slog.Any("error", err))
	default:
		return nil, err
	}

	placesClient := places.NewClient(cfg.Places.APIKey, logger,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithLanguage(cfg.Places.Language),
		places.WithTimeouts(cfg.Places.Timeout, cfg.Places.GeocodeTimeout),
		places.WithRateLimit(cfg.Places.RateLimit),
		places.WithPhotoMaxWidth(cfg.Places.PhotoMaxWidth),
	)
	if !placesClient.Configured() {
		logger.Warn("Google Maps API key is not configured")
	}

	var repo recommendation.Repository
	if pool != nil {
		repo = recommendation.NewRepository(pool, logger)
	}

	service := recommendation.NewServiceImpl(
		aiClient,
		placesClient,
		placesClient,
		repo,
		appMetrics,
		cfg.Recommender,
		cfg.GenAI.Timeout,
		logger,
	)
	handler := recommendation.NewHandlerImpl(service, recommendation.NewContextAssembler(logger), logger)

	return &Container{
		Config:                cfg,
		Logger:                logger,
		Pool:                  pool,
		RecommendationHandler: handler,
	}, nil
}

// Close releases resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
