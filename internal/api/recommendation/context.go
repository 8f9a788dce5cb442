package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const unknownWeatherDescription = "unknown"

// wireContext mirrors the browser payload. Temperature is kept raw because clients send
// it either as a number or as a numeric string.
type wireContext struct {
	UserInput             string                `json:"userInput"`
	UserSpecifiedLocation string                `json:"userSpecifiedLocation"`
	CurrentGeoPosition    *types.GeoPosition    `json:"currentGeoPosition"`
	InitialGeoPosition    *types.GeoPosition    `json:"initialGeoPosition"`
	CalendarEvents        []types.CalendarEvent `json:"calendarEvents"`
	Weather               *struct {
		Description string          `json:"description"`
		Temperature json.RawMessage `json:"temperature"`
	} `json:"weather"`
	Preferences *types.Preferences `json:"preferences"`
}

// ContextAssembler turns the raw "context" object of a request into a normalized RequestContext.
type ContextAssembler struct {
	logger   *slog.Logger
	validate *validator.Validate
}

func NewContextAssembler(logger *slog.Logger) *ContextAssembler {
	return &ContextAssembler{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Assemble decodes and normalizes raw. It fails with ErrInvalidContext when raw is not a
// JSON object and with ErrMissingUserInput when the free-text need is absent or blank.
func (a *ContextAssembler) Assemble(ctx context.Context, raw json.RawMessage) (types.RequestContext, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return types.RequestContext{}, types.ErrInvalidContext
	}

	var wire wireContext
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		a.logger.WarnContext(ctx, "Rejecting undecodable request context", slog.Any("error", err))
		return types.RequestContext{}, fmt.Errorf("%w: %v", types.ErrInvalidContext, err)
	}

	rc := types.RequestContext{
		UserInput:             strings.TrimSpace(wire.UserInput),
		UserSpecifiedLocation: strings.TrimSpace(wire.UserSpecifiedLocation),
		CurrentGeoPosition:    a.validPosition(ctx, "currentGeoPosition", wire.CurrentGeoPosition),
		InitialGeoPosition:    a.validPosition(ctx, "initialGeoPosition", wire.InitialGeoPosition),
		CalendarEvents:        normalizeEvents(wire.CalendarEvents),
		Weather:               types.Weather{Description: unknownWeatherDescription},
		Preferences: types.Preferences{
			Likes:    []string{},
			Dislikes: []string{},
		},
	}

	if wire.Weather != nil {
		if d := strings.TrimSpace(wire.Weather.Description); d != "" {
			rc.Weather.Description = d
		}
		rc.Weather.Temperature = parseTemperature(wire.Weather.Temperature)
	}
	if wire.Preferences != nil {
		rc.Preferences.Likes = compact(wire.Preferences.Likes)
		rc.Preferences.Dislikes = compact(wire.Preferences.Dislikes)
	}

	if rc.UserInput == "" {
		return rc, types.ErrMissingUserInput
	}
	return rc, nil
}

func (a *ContextAssembler) validPosition(ctx context.Context, field string, pos *types.GeoPosition) *types.GeoPosition {
	if pos == nil {
		return nil
	}
	if err := a.validate.Struct(pos); err != nil {
		a.logger.WarnContext(ctx, "Discarding out-of-range geo position",
			slog.String("field", field),
			slog.Float64("latitude", pos.Latitude),
			slog.Float64("longitude", pos.Longitude),
			slog.Any("error", err))
		return nil
	}
	return pos
}

func parseTemperature(raw json.RawMessage) *float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func normalizeEvents(events []types.CalendarEvent) []types.CalendarEvent {
	out := make([]types.CalendarEvent, 0, len(events))
	for _, e := range events {
		e.Summary = strings.TrimSpace(e.Summary)
		e.StartTime = strings.TrimSpace(e.StartTime)
		e.EndTime = strings.TrimSpace(e.EndTime)
		e.Location = strings.TrimSpace(e.Location)
		if e.Summary == "" && e.StartTime == "" && e.EndTime == "" && e.Location == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
