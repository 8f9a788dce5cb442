package recommendation

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-food-recommender/internal/api/places"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const (
	defaultReason = "Recommended (no detailed reason provided by the AI)"
	defaultCost   = "Price unknown"
)

// PlacesClient is the place-data service as seen by the enricher.
type PlacesClient interface {
	PlaceDetails(ctx context.Context, placeID string) (*types.PlaceRecord, error)
	FindPlaceID(ctx context.Context, name, address string) (string, error)
	PhotoURL(photoReference string) string
}

// EnrichOutcome is the result of confirming one candidate against the place-data service.
type EnrichOutcome int

const (
	OutcomeNotFound EnrichOutcome = iota
	OutcomeEnriched
	OutcomeClosed
)

func (o EnrichOutcome) String() string {
	switch o {
	case OutcomeEnriched:
		return "enriched"
	case OutcomeClosed:
		return "closed"
	default:
		return "not_found"
	}
}

type EnrichedResult struct {
	Candidate types.AICandidate
	Outcome   EnrichOutcome
	Record    *types.PlaceRecord
}

// PlaceEnricher confirms AI candidates. It never fails: every lookup problem becomes NotFound.
type PlaceEnricher struct {
	places PlacesClient
	logger *slog.Logger
}

func NewPlaceEnricher(placesClient PlacesClient, logger *slog.Logger) *PlaceEnricher {
	return &PlaceEnricher{
		places: placesClient,
		logger: logger,
	}
}

func (p *PlaceEnricher) Enrich(ctx context.Context, candidate types.AICandidate) EnrichedResult {
	ctx, span := otel.Tracer("PlaceEnricher").Start(ctx, "Enrich", trace.WithAttributes(
		attribute.String("candidate.name", candidate.Name),
		attribute.Bool("candidate.has_place_id", candidate.PlaceID != ""),
	))
	defer span.End()

	result := EnrichedResult{Candidate: candidate, Outcome: OutcomeNotFound}

	placeID := candidate.PlaceID
	if placeID == "" {
		id, err := p.places.FindPlaceID(ctx, candidate.Name, candidate.Address)
		if err != nil {
			p.logLookupFailure(ctx, "Find place lookup failed", err,
				slog.String("query", candidate.Name+" "+candidate.Address))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Place id lookup failed")
			return result
		}
		placeID = id
	}

	record, err := p.places.PlaceDetails(ctx, placeID)
	if err != nil {
		p.logLookupFailure(ctx, "Place details lookup failed", err, slog.String("place_id", placeID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place details lookup failed")
		return result
	}

	result.Record = record
	if record.PermanentlyClosed {
		p.logger.InfoContext(ctx, "Dropping permanently closed venue",
			slog.String("name", candidate.Name),
			slog.String("place_id", placeID))
		result.Outcome = OutcomeClosed
	} else {
		result.Outcome = OutcomeEnriched
	}
	span.SetAttributes(attribute.String("enrich.outcome", result.Outcome.String()))
	span.SetStatus(codes.Ok, "Candidate enriched")
	return result
}

func (p *PlaceEnricher) logLookupFailure(ctx context.Context, msg string, err error, attrs ...any) {
	if errors.Is(err, places.ErrPlaceNotFound) {
		p.logger.InfoContext(ctx, msg, append(attrs, slog.String("reason", "not found"))...)
		return
	}
	p.logger.WarnContext(ctx, msg, append(attrs, slog.Any("error", err))...)
}

// Merge lets the authoritative record override AI fields wherever it has a value.
func (p *PlaceEnricher) Merge(r EnrichedResult) types.FinalRecommendation {
	rec := aiOnlyRecommendation(r.Candidate, types.SourceGooglePlacesEnhanced)
	if r.Record == nil {
		return rec
	}
	if r.Record.Name != nil && *r.Record.Name != "" {
		rec.Name = *r.Record.Name
	}
	if r.Record.Address != nil && *r.Record.Address != "" {
		rec.Address = *r.Record.Address
	}
	if r.Record.PlaceID != nil && *r.Record.PlaceID != "" {
		rec.PlaceID = r.Record.PlaceID
	}
	if r.Record.Rating != nil {
		rec.Rating = r.Record.Rating
	}
	if r.Record.UserRatingsTotal != nil {
		rec.UserRatingsTotal = r.Record.UserRatingsTotal
	}
	if r.Record.PhotoReference != nil && *r.Record.PhotoReference != "" {
		rec.PhotoReference = r.Record.PhotoReference
		photoURL := p.places.PhotoURL(*r.Record.PhotoReference)
		rec.GoogleImageURL = &photoURL
	}
	return rec
}

// aiOnlyRecommendation derives a recommendation from the model's fields alone.
func aiOnlyRecommendation(c types.AICandidate, source types.RecommendationSource) types.FinalRecommendation {
	rec := types.FinalRecommendation{
		Name:       c.Name,
		Address:    c.Address,
		PlaceID:    types.StringPtr(c.PlaceID),
		Rating:     c.AIRating,
		AIImageURL: types.StringPtr(c.AIImageURL),
		Reason:     c.Reason,
		Cost:       c.Cost,
		Source:     source,
	}
	if rec.Reason == "" {
		rec.Reason = defaultReason
	}
	if rec.Cost == "" {
		rec.Cost = defaultCost
	}
	return rec
}
