package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// DeckHandler handles deck and card management HTTP requests
type DeckHandler struct {
	deckStore store.DeckStore
	cardStore store.CardStore
	logger    *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(
	deckStore store.DeckStore,
	cardStore store.CardStore,
	log *slog.Logger,
) *DeckHandler {
	if deckStore == nil || cardStore == nil {
		panic("stores cannot be nil for DeckHandler")
	}
	if log == nil {
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		deckStore: deckStore,
		cardStore: cardStore,
		logger:    log.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeckRequest represents the request body for creating a deck
type CreateDeckRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// CreateCardRequest represents the request body for creating a card
type CreateCardRequest struct {
	Front    string `json:"front" validate:"required,max=2000"`
	Back     string `json:"back" validate:"required,max=2000"`
	Phonetic string `json:"phonetic" validate:"max=255"`
	Example  string `json:"example" validate:"max=2000"`
}

// CreateDeck handles POST /decks requests
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deck, err := domain.NewDeck(userID, req.Name, req.Description)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid deck data", err)
		return
	}

	if err := h.deckStore.Create(r.Context(), deck); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ListDecks handles GET /decks requests
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	decks, err := h.deckStore.ListByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list decks", err)
		return
	}

	responses := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		responses = append(responses, deckToResponse(deck))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// CreateCard handles POST /decks/{id}/cards requests
func (h *DeckHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	deck, ok := h.ownedDeck(w, r, userID)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := domain.NewCard(deck.ID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid card data", err)
		return
	}
	card.Phonetic = req.Phonetic
	card.Example = req.Example

	if err := h.cardStore.Create(r.Context(), card); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// ListCards handles GET /decks/{id}/cards requests
func (h *DeckHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	deck, ok := h.ownedDeck(w, r, userID)
	if !ok {
		return
	}

	cards, err := h.cardStore.ListByDeck(r.Context(), deck.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list cards", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// ownedDeck resolves the {id} path parameter to a deck owned by userID,
// writing the error response itself when that fails.
func (h *DeckHandler) ownedDeck(
	w http.ResponseWriter,
	r *http.Request,
	userID uuid.UUID,
) (*domain.Deck, bool) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return nil, false
	}

	deck, err := h.deckStore.GetByID(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}

	if deck.UserID != userID {
		shared.RespondWithError(w, r, http.StatusForbidden, "You do not own this resource")
		return nil, false
	}

	return deck, true
}
