package types

import (
	"encoding/json"
	"strings"
)

// RecommendationSource tags how much authoritative confirmation backs a recommendation.
type RecommendationSource string

const (
	SourceGooglePlacesEnhanced RecommendationSource = "google_places_api_enhanced"
	SourceAIOnly               RecommendationSource = "ai_only"
	SourceAIOnlyFallback       RecommendationSource = "ai_only_fallback"
)

// NoResultsStatus is the status value of the sentinel element the model returns when it finds nothing.
const NoResultsStatus = "NO_RESULTS"

// RecommendationRequest is the inbound JSON body of POST /recommendations.
type RecommendationRequest struct {
	Context json.RawMessage `json:"context" swaggertype:"object"`
}

// GeoPosition is a latitude/longitude pair as sent by the browser geolocation API.
type GeoPosition struct {
	Latitude  float64 `json:"latitude" validate:"latitude" example:"25.0330"`
	Longitude float64 `json:"longitude" validate:"longitude" example:"121.5654"`
}

// CalendarEvent is a single entry from the user's calendar for today.
type CalendarEvent struct {
	Summary   string `json:"summary" example:"Team lunch"`
	StartTime string `json:"startTime" example:"12:00"`
	EndTime   string `json:"endTime" example:"13:30"`
	Location  string `json:"location" example:"Xinyi District"`
	IsAllDay  bool   `json:"isAllDay"`
}

// Weather describes the current conditions. Temperature is nil when unknown.
type Weather struct {
	Description string   `json:"description" example:"light rain"`
	Temperature *float64 `json:"temperature" example:"18.5"`
}

// Preferences lists the user's food likes and dislikes.
type Preferences struct {
	Likes    []string `json:"likes"`
	Dislikes []string `json:"dislikes"`
}

// HasAny reports whether any like or dislike is present.
func (p Preferences) HasAny() bool {
	return len(p.Likes) > 0 || len(p.Dislikes) > 0
}

// RequestContext is the normalized situational context of a recommendation request.
type RequestContext struct {
	UserInput             string          `json:"userInput" example:"spicy hot pot"`
	UserSpecifiedLocation string          `json:"userSpecifiedLocation,omitempty" example:"Da'an District"`
	CurrentGeoPosition    *GeoPosition    `json:"currentGeoPosition,omitempty"`
	InitialGeoPosition    *GeoPosition    `json:"initialGeoPosition,omitempty"`
	CalendarEvents        []CalendarEvent `json:"calendarEvents,omitempty"`
	Weather               Weather         `json:"weather"`
	Preferences           Preferences     `json:"preferences"`
}

// EffectiveGeoPosition returns the current position, falling back to the initial one.
func (c RequestContext) EffectiveGeoPosition() *GeoPosition {
	if c.CurrentGeoPosition != nil {
		return c.CurrentGeoPosition
	}
	return c.InitialGeoPosition
}

// AICandidate is a restaurant suggestion decoded from the model's answer and checked for
// the fields required to use it.
type AICandidate struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	PlaceID    string   `json:"place_id"`
	AIRating   *float64 `json:"ai_rating"`
	AIImageURL string   `json:"ai_image_url"`
	Reason     string   `json:"reason"`
	Cost       string   `json:"cost"`
}

// PlaceRecord is the authoritative view of a venue from the place-data service.
// Nil pointers mean the service did not report the field.
type PlaceRecord struct {
	Name              *string  `json:"name"`
	Address           *string  `json:"address"`
	Rating            *float64 `json:"rating"`
	UserRatingsTotal  *int     `json:"user_ratings_total"`
	PhotoReference    *string  `json:"photo_reference"`
	PlaceID           *string  `json:"place_id"`
	PermanentlyClosed bool     `json:"permanently_closed"`
}

// FinalRecommendation is one item of the response list.
type FinalRecommendation struct {
	Name             string               `json:"name"`
	Address          string               `json:"address"`
	PlaceID          *string              `json:"place_id"`
	Rating           *float64             `json:"rating"`
	UserRatingsTotal *int                 `json:"user_ratings_total"`
	PhotoReference   *string              `json:"photo_reference"`
	GoogleImageURL   *string              `json:"google_image_url"`
	AIImageURL       *string              `json:"ai_image_url"`
	Reason           string               `json:"reason"`
	Cost             string               `json:"cost"`
	Source           RecommendationSource `json:"source"`
}

// RecommendationResponse is the envelope returned to the caller for every outcome.
// Recommendations holds either []FinalRecommendation or the raw NO_RESULTS sentinel list.
type RecommendationResponse struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message,omitempty"`
	Recommendations interface{} `json:"recommendations,omitempty"`
	PromptHash      string      `json:"promptHash,omitempty"`
	RawText         *string     `json:"rawText,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
