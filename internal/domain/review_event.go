package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Quality score bounds for a single review.
const (
	MinQuality = 0 // complete blackout
	MaxQuality = 5 // perfect recall
)

// Common validation errors for ReviewEvent
var (
	ErrReviewUserIDEmpty = errors.New("review event user ID cannot be empty")
	ErrReviewCardIDEmpty = errors.New("review event card ID cannot be empty")
	ErrInvalidQuality    = fmt.Errorf("quality must be between %d and %d", MinQuality, MaxQuality)
)

// ReviewEvent records a single self-assessed recall of a card. Events are
// immutable and append-only; they form the history the forgetting-curve
// predictor consults.
type ReviewEvent struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CardID     uuid.UUID `json:"card_id"`
	Quality    int       `json:"quality"` // 0..5
	ReviewedAt time.Time `json:"reviewed_at"`
}

// NewReviewEvent creates a new review event for the given user and card.
// Returns ErrInvalidQuality if the quality score is out of range.
func NewReviewEvent(userID, cardID uuid.UUID, quality int, reviewedAt time.Time) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		Quality:    quality,
		ReviewedAt: reviewedAt.UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// ValidQuality reports whether q is a legal quality score.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Validate checks if the ReviewEvent has valid data.
func (e *ReviewEvent) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrReviewUserIDEmpty
	}

	if e.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}

	if !ValidQuality(e.Quality) {
		return ErrInvalidQuality
	}

	return nil
}
