package places

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

// PlaceDetails fetches the authoritative record for placeID.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*types.PlaceRecord, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "PlaceDetails", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var resp placeDetailsResponse
	if err := c.get(ctx, "/place/details/json", params, c.timeout, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place details request failed")
		return nil, err
	}
	if err := statusError(resp.apiEnvelope); err != nil {
		c.logger.WarnContext(ctx, "Place Details API error",
			slog.String("place_id", placeID),
			slog.String("status", resp.Status),
			slog.String("error_message", resp.ErrorMessage))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place details status not OK")
		return nil, err
	}
	if resp.Result == nil {
		err := &types.UpstreamError{Kind: types.UpstreamMalformed, Service: serviceName, Message: "details response has no result"}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty result")
		return nil, err
	}

	record := toPlaceRecord(resp.Result, placeID)
	span.SetAttributes(attribute.Bool("place.permanently_closed", record.PermanentlyClosed))
	span.SetStatus(codes.Ok, "Place details fetched")
	return record, nil
}

// FindPlaceID resolves a free-text "name address" query to a place id.
func (c *Client) FindPlaceID(ctx context.Context, name, address string) (string, error) {
	query := strings.TrimSpace(name + " " + address)
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "FindPlaceID", trace.WithAttributes(
		attribute.String("place.query", query),
	))
	defer span.End()

	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id")

	var resp findPlaceResponse
	if err := c.get(ctx, "/place/findplacefromtext/json", params, c.timeout, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Find place request failed")
		return "", err
	}
	if err := statusError(resp.apiEnvelope); err != nil {
		c.logger.WarnContext(ctx, "Find Place API error",
			slog.String("query", query),
			slog.String("status", resp.Status),
			slog.String("error_message", resp.ErrorMessage))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Find place status not OK")
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		span.SetStatus(codes.Error, "No candidates")
		return "", ErrPlaceNotFound
	}

	span.SetStatus(codes.Ok, "Place id resolved")
	return resp.Candidates[0].PlaceID, nil
}

// PhotoURL builds the Place Photo URL for a photo reference.
func (c *Client) PhotoURL(photoReference string) string {
	params := url.Values{}
	params.Set("maxwidth", fmt.Sprintf("%d", c.photoMaxWidth))
	params.Set("photoreference", photoReference)
	params.Set("key", c.apiKey)
	return fmt.Sprintf("%s/place/photo?%s", c.baseURL, params.Encode())
}

func toPlaceRecord(r *placeDetailsResult, requestedID string) *types.PlaceRecord {
	record := &types.PlaceRecord{
		Name:              nonEmpty(r.Name),
		Address:           nonEmpty(r.FormattedAddress),
		Rating:            r.Rating,
		UserRatingsTotal:  r.UserRatingsTotal,
		PlaceID:           nonEmpty(r.PlaceID),
		PermanentlyClosed: r.PermanentlyClosed || r.BusinessStatus == businessStatusClosedPermanently,
	}
	if record.PlaceID == nil {
		record.PlaceID = &requestedID
	}
	if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
		ref := r.Photos[0].PhotoReference
		record.PhotoReference = &ref
	}
	return record
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
