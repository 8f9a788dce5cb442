package recommendation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-food-recommender/internal/api"
	"github.com/FACorreiaa/go-food-recommender/internal/api/auth"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Recommend(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service   Service
	assembler *ContextAssembler
	logger    *slog.Logger
}

func NewHandlerImpl(service Service, assembler *ContextAssembler, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:   service,
		assembler: assembler,
		logger:    logger,
	}
}

// Recommend godoc
// @Summary      Recommend restaurants
// @Description  Asks the search-grounded model for restaurants matching the user's need and situation, then confirms each against Google Places.
// @Tags         Recommendations
// @Accept       json
// @Produce      json
// @Param        request body types.RecommendationRequest true "Situational context"
// @Success      200 {object} types.RecommendationResponse "Recommendations, the NO_RESULTS sentinel, or a pipeline failure with success=false"
// @Failure      400 {object} types.RecommendationResponse "Invalid context or missing userInput"
// @Failure      401 {object} types.RecommendationResponse "Unauthorized"
// @Failure      500 {object} types.RecommendationResponse "Provider credentials are not configured"
// @Security     BearerAuth
// @Router       /recommendations [post]
func (h *HandlerImpl) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendationHandler").Start(r.Context(), "Recommend", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/recommendations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "Recommend"))
	l.DebugContext(ctx, "Recommend handler invoked")

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.WarnContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.WarnContext(ctx, "Invalid user ID format", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid user ID")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID.String()))
	l = l.With(slog.String("userID", userID.String()))

	var req types.RecommendationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rc, err := h.assembler.Assemble(ctx, req.Context)
	if err != nil {
		l.WarnContext(ctx, "Rejected recommendation context", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid context")
		msg := "Invalid request context"
		if errors.Is(err, types.ErrMissingUserInput) {
			msg = "Please tell us what you would like to eat"
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.service.Recommend(ctx, userID, rc)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			span.SetStatus(codes.Error, "Unauthenticated")
			api.WriteJSONResponse(w, r, http.StatusUnauthorized, resp)
		case errors.Is(err, types.ErrMissingUserInput):
			span.SetStatus(codes.Error, "Missing user input")
			api.WriteJSONResponse(w, r, http.StatusBadRequest, resp)
		default:
			l.ErrorContext(ctx, "Recommendation service unavailable", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Service not configured")
			api.WriteJSONResponse(w, r, http.StatusInternalServerError, resp)
		}
		return
	}

	if resp.Success {
		span.SetStatus(codes.Ok, "Recommendations returned")
	} else {
		span.SetStatus(codes.Error, resp.Message)
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
