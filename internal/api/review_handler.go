package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
)

// ReviewHandler handles review and due-card HTTP requests
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService review.ReviewService, log *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("review service cannot be nil for ReviewHandler")
	}
	if log == nil {
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// RecordReviewRequest represents the request body for recording a review.
// Quality is a pointer so that an absent field is distinguishable from a
// legitimate quality of 0.
type RecordReviewRequest struct {
	Quality      *int `json:"quality" validate:"required,min=0,max=5"`
	WithInsights bool `json:"with_insights"`
}

// RecordReview handles POST /cards/{id}/review requests
// It applies the quality score to the card's schedule and appends the review
// to its history. With with_insights set, the response also carries the
// forgetting prediction that was blended into the schedule.
func (h *ReviewHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req RecordReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	quality := *req.Quality

	if req.WithInsights {
		insights, err := h.reviewService.RecordReviewWithInsights(r.Context(), userID, cardID, quality)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}

		shared.RespondWithJSON(w, r, http.StatusOK, ReviewInsightsResponse{
			Progress:   progressToResponse(insights.Progress),
			Prediction: predictionToResponse(insights.Prediction),
		})
		return
	}

	progress, err := h.reviewService.RecordReview(r.Context(), userID, cardID, quality)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality))
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// DueCards handles GET /decks/{id}/due requests
// Optional query parameters: as_of (RFC 3339, defaults to now) and limit.
func (h *ReviewHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid as_of timestamp, expected RFC 3339")
			return
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	cards, err := h.reviewService.DueCards(r.Context(), userID, deckID, asOf, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("due cards selected",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}
