package places

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const geocodeResultTypes = "administrative_area_level_2|locality|sublocality_level_1"

// AreaDescription reverse-geocodes a coordinate into "city[district]". It never fails:
// any problem is logged and reported as an empty string.
func (c *Client) AreaDescription(ctx context.Context, lat, lon float64) string {
	area, err := c.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		c.logger.WarnContext(ctx, "Reverse geocoding failed, continuing without area",
			slog.Float64("latitude", lat),
			slog.Float64("longitude", lon),
			slog.Any("error", err))
		return ""
	}
	return area
}

// ReverseGeocode looks up the administrative area around lat/lon.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "ReverseGeocode")
	defer span.End()

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("result_type", geocodeResultTypes)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, c.geocodeTimeout, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode request failed")
		return "", err
	}
	if err := statusError(resp.apiEnvelope); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode status not OK")
		return "", err
	}
	if len(resp.Results) == 0 {
		span.SetStatus(codes.Error, "No geocode results")
		return "", ErrPlaceNotFound
	}

	span.SetStatus(codes.Ok, "Area resolved")
	return describeArea(resp.Results[0]), nil
}

func describeArea(result geocodeResult) string {
	var city, district string
	for _, component := range result.AddressComponents {
		if component.hasType("locality") {
			city = component.LongName
		}
		if component.hasType("administrative_area_level_1") && city == "" {
			city = component.LongName
		}
		if component.hasType("administrative_area_level_2") && district == "" {
			district = component.LongName
		}
		if component.hasType("sublocality_level_1") && district == "" && city != component.LongName {
			district = component.LongName
		}
	}

	switch {
	case city != "" && district != "" && city != district:
		return city + district
	case city != "":
		return city
	case district != "":
		return district
	}
	return result.FormattedAddress
}
