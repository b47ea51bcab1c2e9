package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
)

// maxBatchSize caps how many cards one batch prediction request may name.
const maxBatchSize = 200

// PredictionHandler handles forgetting-prediction HTTP requests
type PredictionHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler
func NewPredictionHandler(reviewService review.ReviewService, log *slog.Logger) *PredictionHandler {
	if reviewService == nil {
		panic("review service cannot be nil for PredictionHandler")
	}
	if log == nil {
		panic("logger cannot be nil for PredictionHandler")
	}

	return &PredictionHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "prediction_handler")),
	}
}

// GetPrediction handles GET /cards/{id}/prediction requests
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
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

	pred, err := h.reviewService.Predict(r.Context(), userID, cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("prediction computed",
		slog.String("card_id", cardID.String()),
		slog.Bool("ai_powered", pred.AIPowered))
	shared.RespondWithJSON(w, r, http.StatusOK, predictionToResponse(pred))
}

// BatchPredictionRequest represents the request body for batch predictions
type BatchPredictionRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1"`
}

// PredictBatch handles POST /predictions/batch requests
// It computes predictions for every owned card among the requested IDs and
// aggregates them into risk statistics. Unowned and unknown cards are
// excluded silently.
func (h *PredictionHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req BatchPredictionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if len(req.CardIDs) > maxBatchSize {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Batch size exceeds the maximum of %d cards", maxBatchSize))
		return
	}

	cardIDs, bad, ok := parseIDs(req.CardIDs)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Invalid card ID format: %s", bad))
		return
	}

	result, err := h.reviewService.PredictBatch(r.Context(), userID, cardIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("batch predictions computed",
		slog.Int("requested", len(cardIDs)),
		slog.Int("resolved", result.Stats.TotalCards))
	shared.RespondWithJSON(w, r, http.StatusOK, batchToResponse(result))
}
