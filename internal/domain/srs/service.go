package srs

import (
	"errors"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Common errors
var (
	ErrNilProgress = errors.New("card progress cannot be nil")
)

// Service applies scheduling updates to CardProgress entities. It wraps the
// pure Advance functions with the bookkeeping a persisted entity needs
// (review counts, timestamps, the version marker) while keeping updates
// immutable: callers receive a new instance and persist it themselves.
type Service interface {
	// AdvanceProgress computes the next scheduling state for a review with
	// the given quality score. Returns domain.ErrInvalidQuality for an
	// out-of-range score; the caller is expected to validate before calling.
	AdvanceProgress(
		progress *domain.CardProgress,
		quality int,
		now time.Time,
	) (*domain.CardProgress, error)

	// AdvanceProgressBlended is AdvanceProgress with the oracle's recommended
	// interval folded into the final schedule per the blending policy.
	AdvanceProgressBlended(
		progress *domain.CardProgress,
		quality int,
		recommended float64,
		now time.Time,
	) (*domain.CardProgress, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct{}

// NewService creates the default scheduling service.
func NewService() Service {
	return defaultService{}
}

func (defaultService) AdvanceProgress(
	progress *domain.CardProgress,
	quality int,
	now time.Time,
) (*domain.CardProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}
	if !domain.ValidQuality(quality) {
		return nil, domain.ErrInvalidQuality
	}

	next := Advance(stateOf(progress), quality)
	return apply(progress, next, now), nil
}

func (defaultService) AdvanceProgressBlended(
	progress *domain.CardProgress,
	quality int,
	recommended float64,
	now time.Time,
) (*domain.CardProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}
	if !domain.ValidQuality(quality) {
		return nil, domain.ErrInvalidQuality
	}

	next := AdvanceBlended(stateOf(progress), quality, recommended)
	return apply(progress, next, now), nil
}

// stateOf extracts the pure scheduling tuple from a progress entity.
func stateOf(progress *domain.CardProgress) State {
	return State{
		Easiness:   progress.Easiness,
		Repetition: progress.Repetition,
		Interval:   progress.Interval,
	}
}

// apply copies the progress entity with the new scheduling state and updated
// bookkeeping. UpdatedAt moves on every call, which changes the version
// marker and invalidates cached predictions for the card.
func apply(progress *domain.CardProgress, next State, now time.Time) *domain.CardProgress {
	now = now.UTC().Truncate(time.Microsecond)
	reviewAt := NextReviewAt(now, next.Interval)

	updated := &domain.CardProgress{
		UserID:         progress.UserID,
		CardID:         progress.CardID,
		Easiness:       next.Easiness,
		Repetition:     next.Repetition,
		Interval:       next.Interval,
		LastReviewedAt: now,
		NextReviewAt:   &reviewAt,
		ReviewCount:    progress.ReviewCount + 1,
		CreatedAt:      progress.CreatedAt,
		UpdatedAt:      now,
	}

	return updated
}
