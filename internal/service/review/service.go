// Package review orchestrates the study workflow: recording reviews,
// selecting due cards, and producing forgetting predictions. It owns the
// transaction boundaries; the srs and prediction packages stay pure.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
)

// DefaultDueLimit caps a due-card selection when the caller does not ask for
// a specific batch size.
const DefaultDueLimit = 20

// ReviewInsights pairs the updated scheduling state with the prediction that
// informed it, so a client can show both after a review.
type ReviewInsights struct {
	Progress   *domain.CardProgress
	Prediction *domain.Prediction
}

// ReviewService defines the study workflow operations.
type ReviewService interface {
	// RecordReview applies a quality score to a card's scheduling state and
	// appends the review to the card's history, atomically. First reviews
	// create the scheduling state.
	//
	// Returns ErrInvalidQuality, ErrCardNotFound, ErrNotOwned, or
	// ErrReviewConflict when a concurrent review of the same card wins.
	RecordReview(ctx context.Context, userID, cardID uuid.UUID, quality int) (*domain.CardProgress, error)

	// RecordReviewWithInsights is RecordReview with the forgetting prediction
	// folded into the schedule: the oracle's recommended interval is blended
	// with the deterministic one, and the prediction is returned alongside
	// the updated state. Prediction failures never fail the review.
	RecordReviewWithInsights(ctx context.Context, userID, cardID uuid.UUID, quality int) (*ReviewInsights, error)

	// DueCards returns the user's cards in a deck that are due at the asOf
	// instant. Cards without scheduling state are always due. A limit of
	// zero or less selects DefaultDueLimit cards.
	DueCards(ctx context.Context, userID, deckID uuid.UUID, asOf time.Time, limit int) ([]*domain.Card, error)

	// Predict returns the forgetting estimate for one of the user's cards.
	Predict(ctx context.Context, userID, cardID uuid.UUID) (*domain.Prediction, error)

	// PredictBatch computes predictions for the user's cards among cardIDs
	// and aggregates them into deck-level risk statistics. Cards the user
	// does not own are silently excluded.
	PredictBatch(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) (*prediction.BatchResult, error)
}
