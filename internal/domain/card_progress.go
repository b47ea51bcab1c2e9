package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Default scheduling values for a card that has never been reviewed.
const (
	DefaultEasiness = 2.5
	DefaultInterval = 1.0 // days
)

// Common validation errors for CardProgress
var (
	ErrProgressUserIDEmpty   = errors.New("card progress user ID cannot be empty")
	ErrProgressCardIDEmpty   = errors.New("card progress card ID cannot be empty")
	ErrProgressBadInterval   = errors.New("interval must be greater than 0")
	ErrProgressBadEasiness   = errors.New("easiness must be greater than 1.0")
	ErrProgressBadRepetition = errors.New("repetition cannot be negative")
)

// CardProgress is the canonical per-user scheduling state for one card.
// It tracks the SM-2 variables (easiness, repetition, interval) plus the
// absolute next-review instant. Interval is a float64 number of days so that
// short-term relearning steps (one minute, five minutes, six hours) can be
// expressed as day fractions.
//
// A nil NextReviewAt means the card has never been scheduled and is due
// immediately.
//
// CardProgress is updated immutably: the srs package returns new instances
// rather than mutating existing ones.
type CardProgress struct {
	UserID         uuid.UUID  `json:"user_id"`
	CardID         uuid.UUID  `json:"card_id"`
	Easiness       float64    `json:"easiness"`
	Repetition     int        `json:"repetition"`
	Interval       float64    `json:"interval"` // days, fractional
	LastReviewedAt time.Time  `json:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at"`
	ReviewCount    int        `json:"review_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewCardProgress creates fresh scheduling state for a user and card.
// The card is immediately due (NextReviewAt is nil).
func NewCardProgress(userID, cardID uuid.UUID) (*CardProgress, error) {
	// Timestamps are truncated to microseconds so the version marker survives
	// a round trip through the database unchanged.
	now := time.Now().UTC().Truncate(time.Microsecond)
	progress := &CardProgress{
		UserID:     userID,
		CardID:     cardID,
		Easiness:   DefaultEasiness,
		Repetition: 0,
		Interval:   DefaultInterval,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// VersionMarker returns the value used to key cached predictions for this
// card/user pair. Any scheduling mutation sets UpdatedAt, which moves the
// marker and makes previously cached predictions unreachable.
func (p *CardProgress) VersionMarker() int64 {
	return p.UpdatedAt.UnixMicro()
}

// Validate checks if the CardProgress has valid data.
func (p *CardProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrProgressUserIDEmpty
	}

	if p.CardID == uuid.Nil {
		return ErrProgressCardIDEmpty
	}

	if p.Interval <= 0 {
		return ErrProgressBadInterval
	}

	if p.Easiness <= 1.0 {
		return ErrProgressBadEasiness
	}

	if p.Repetition < 0 {
		return ErrProgressBadRepetition
	}

	return nil
}
