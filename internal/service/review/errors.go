package review

import (
	"errors"
)

// Common review service errors returned to transport-layer callers.
var (
	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound indicates the deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrNotOwned indicates the entity exists but belongs to another user.
	ErrNotOwned = errors.New("not owned by user")

	// ErrInvalidQuality indicates the quality score is outside 0..5.
	ErrInvalidQuality = errors.New("invalid quality score")

	// ErrReviewConflict indicates a concurrent review of the same card won.
	// The client should reload the card state and retry.
	ErrReviewConflict = errors.New("concurrent review conflict")
)
