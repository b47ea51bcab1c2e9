package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/mnemo-app/mnemo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Deck and card management endpoints
			r.Post("/decks", app.deckHandler.CreateDeck)
			r.Get("/decks", app.deckHandler.ListDecks)
			r.Post("/decks/{id}/cards", app.deckHandler.CreateCard)
			r.Get("/decks/{id}/cards", app.deckHandler.ListCards)

			// Study endpoints
			r.Get("/decks/{id}/due", app.reviewHandler.DueCards)
			r.Post("/cards/{id}/review", app.reviewHandler.RecordReview)

			// Prediction endpoints
			r.Get("/cards/{id}/prediction", app.predictionHandler.GetPrediction)
			r.Post("/predictions/batch", app.predictionHandler.PredictBatch)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
